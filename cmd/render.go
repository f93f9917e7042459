package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/export"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/parallel"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/render"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/ui"
)

func renderCmd() *cobra.Command {
	var (
		outDir    string
		format    string
		width     float64
		height    float64
		ratio     float64
		noCaption bool
		jobs      int
	)

	cmd := &cobra.Command{
		Use:   "render <paper-id>...",
		Short: "Render settled concept graphs to PNG or SVG",
		Long: `Fetch each paper's concept graph, run the layout to the end of its
iteration budget and write the final frame as an image.

  papergraph render paper-1                 # paper-1.png in the current directory
  papergraph render a b c -o graphs/ --format svg
  papergraph render paper-1 --ratio 2       # high-density backing store`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			log := newLogger()
			defer log.Sync()

			flags := cmd.Flags()
			if !flags.Changed("format") {
				format = cfg.View.Format
			}
			if !flags.Changed("width") {
				width = cfg.View.Width
			}
			if !flags.Changed("height") {
				height = cfg.View.Height
			}
			if !flags.Changed("ratio") {
				ratio = cfg.View.PixelRatio
			}
			if !flags.Changed("jobs") {
				jobs = cfg.View.Concurrency
			}

			opts := export.Options{
				Dir:      outDir,
				Format:   format,
				Viewport: render.Viewport{Width: width, Height: height, PixelRatio: ratio},
				Params:   cfg.Layout,
				Caption:  cfg.View.Caption && !noCaption,
				Logger:   log,
			}
			if !opts.Viewport.Valid() {
				ui.Bad.Printf("  Invalid size %gx%g\n", width, height)
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			fetcher := newFetcher(cfg, log)
			ui.Banner(os.Stdout, fmt.Sprintf("rendering %d paper(s)", len(args)))

			tasks := make([]parallel.Task, len(args))
			for i, id := range args {
				tasks[i] = parallel.Task{
					Name: id,
					Fn: func(ctx context.Context) (string, error) {
						res, err := export.Paper(ctx, fetcher, id, opts)
						if err != nil {
							return "", err
						}
						return fmt.Sprintf("%s %s", res.Path,
							ui.Subtle.Sprintf("(%d concepts, %d connections)", res.Concepts, res.Connections)), nil
					},
				}
			}

			results := parallel.Run(ctx, os.Stdout, tasks, jobs)
			fmt.Println()
			if failed := parallel.Failed(results); failed > 0 {
				ui.Bad.Printf("  %d of %d failed\n", failed, len(results))
				os.Exit(1)
			}
			ui.Good.Printf("  %s %d rendered\n", ui.StatusIcon(true), len(results))
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Directory to write images to")
	cmd.Flags().StringVarP(&format, "format", "f", "png", "Image format (png or svg)")
	cmd.Flags().Float64Var(&width, "width", 800, "Logical width")
	cmd.Flags().Float64Var(&height, "height", 600, "Logical height")
	cmd.Flags().Float64Var(&ratio, "ratio", 1, "Device pixel ratio")
	cmd.Flags().BoolVar(&noCaption, "no-caption", false, "Leave out the concept count caption")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Papers rendered at once")
	cmd.ValidArgsFunction = paperCompletionFunc
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return export.Formats, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
