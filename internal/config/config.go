package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/layout"
)

// EnvAPIURL overrides API.URL when set.
const EnvAPIURL = "PAPERGRAPH_API_URL"

// DefaultAPIURL is where the research assistant backend listens by default.
const DefaultAPIURL = "http://localhost:8000"

// Config holds papergraph configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	View    ViewConfig    `toml:"view"`
	Layout  layout.Params `toml:"layout"`
	Breaker BreakerConfig `toml:"breaker"`
	UI      UIConfig      `toml:"ui"`
}

// APIConfig controls the backend connection.
type APIConfig struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
}

// ViewConfig controls viewport size and the frame loop.
type ViewConfig struct {
	Width         float64  `toml:"width"`
	Height        float64  `toml:"height"`
	PixelRatio    float64  `toml:"pixel_ratio"`
	FrameInterval Duration `toml:"frame_interval"`
	TicksPerFrame int      `toml:"ticks_per_frame"`
	Caption       bool     `toml:"caption"`
	Format        string   `toml:"format"` // "png" or "svg"
	Concurrency   int      `toml:"concurrency"`
}

// BreakerConfig tunes the circuit breaker in front of the backend.
type BreakerConfig struct {
	ConsecutiveFailures uint32   `toml:"consecutive_failures"`
	MaxRequests         uint32   `toml:"max_requests"` // allowed while half-open
	Interval            Duration `toml:"interval"`
	Timeout             Duration `toml:"timeout"` // open -> half-open
}

// UIConfig controls display options.
type UIConfig struct {
	Color bool `toml:"color"`
}

// Duration is a time.Duration written as "10s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{URL: DefaultAPIURL, Timeout: Duration{10 * time.Second}},
		View: ViewConfig{
			Width:         800,
			Height:        600,
			PixelRatio:    1,
			FrameInterval: Duration{16 * time.Millisecond},
			TicksPerFrame: 1,
			Caption:       true,
			Format:        "png",
			Concurrency:   4,
		},
		Layout: layout.DefaultParams(),
		Breaker: BreakerConfig{
			ConsecutiveFailures: 3,
			MaxRequests:         1,
			Interval:            Duration{time.Minute},
			Timeout:             Duration{30 * time.Second},
		},
		UI: UIConfig{Color: true},
	}
}

// ConfigDir returns the papergraph config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "papergraph")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// ProjectFile is a per-directory override looked up from the working
// directory upwards.
const ProjectFile = ".papergraph.toml"

// Load reads the user config file, then the nearest project file, over the
// defaults and applies environment overrides. Missing or unreadable files
// are skipped.
func Load() *Config {
	cfg := Default()

	for _, path := range []string{Path(), findProjectConfig()} {
		if path == "" {
			continue
		}
		if data, err := os.ReadFile(path); err == nil {
			_ = toml.Unmarshal(data, cfg)
		}
	}

	if url := os.Getenv(EnvAPIURL); url != "" {
		cfg.API.URL = url
	}
	return cfg
}

func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() (bool, error) {
	if _, err := os.Stat(Path()); err == nil {
		return false, nil // already exists
	}
	return true, Save(Default())
}
