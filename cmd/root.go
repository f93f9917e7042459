package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/api"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/cache"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/config"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/driver"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/ui"
)

var version = "0.3.0"

var (
	apiURL      string
	verbose     bool
	offlineMode bool
)

var rootCmd = &cobra.Command{
	Use:   "papergraph",
	Short: "papergraph — concept graphs of research papers",
	Long: ui.Brand.Sprint(ui.Mark+" papergraph") + " — see how the concepts of a paper connect\n" +
		ui.Subtle.Sprint("Fetch a paper's concept graph from the research assistant and lay it out"),
	Version: version + " " + ui.Mark,
}

func init() {
	rootCmd.SetVersionTemplate("papergraph {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Research assistant backend URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&offlineMode, "offline", false, "Read graphs from the local cache only")

	rootCmd.AddCommand(
		renderCmd(),
		viewCmd(),
		inspectCmd(),
		papersCmd(),
		serveCmd(),
		cacheCmd(),
		configCmd(),
		completionCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config and applies the persistent flags.
func loadConfig() *config.Config {
	cfg := config.Load()
	if apiURL != "" {
		cfg.API.URL = apiURL
	}
	ui.SetColor(cfg.UI.Color)
	return cfg
}

// newLogger logs warnings to stderr, or everything with --verbose.
func newLogger() *zap.Logger {
	return buildLogger("stderr", zap.WarnLevel)
}

// newFileLogger is for the full-screen view, where stderr is the screen.
// Without --verbose nothing is logged.
func newFileLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	dir := cache.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zap.NewNop()
	}
	return buildLogger(filepath.Join(filepath.Dir(dir), "view.log"), zap.DebugLevel)
}

func buildLogger(output string, level zapcore.Level) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{output}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		zcfg.Development = true
	}
	log, err := zcfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "papergraph: logger: %v\n", err)
		return zap.NewNop()
	}
	return log
}

// newClient returns a backend client configured from cfg.
func newClient(cfg *config.Config, log *zap.Logger) *api.Client {
	return api.New(cfg.API.URL, api.Options{
		Timeout: cfg.API.Timeout.Duration,
		Breaker: api.BreakerSettings{
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
			MaxRequests:         cfg.Breaker.MaxRequests,
			Interval:            cfg.Breaker.Interval.Duration,
			Timeout:             cfg.Breaker.Timeout.Duration,
		},
		Logger: log,
	})
}

// newFetcher returns where graphs come from: the local cache with
// --offline, otherwise the backend with every fetched graph cached.
func newFetcher(cfg *config.Config, log *zap.Logger) driver.Fetcher {
	store := cache.New(cache.Dir())
	if offlineMode {
		return store
	}
	return store.Through(newClient(cfg, log), func(err error) {
		log.Warn("caching graph failed", zap.Error(err))
	})
}
