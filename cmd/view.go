package cmd

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/driver"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/render"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/tui"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/ui"
)

func viewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [paper-id...]",
		Short: "Watch a paper's concept graph settle in the terminal",
		Long: `Open a live view of the concept graph. The layout animates until its
iteration budget is spent; n and p switch between the given papers, r
reloads the current one.

Without arguments every paper the backend lists is shown.

  papergraph view paper-1
  papergraph view paper-1 paper-2
  papergraph view --offline paper-1       # from the local cache`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			log := newFileLogger()
			defer log.Sync()

			papers := args
			if len(papers) == 0 {
				if offlineMode {
					ui.Bad.Println("  Name the papers to view when offline")
					os.Exit(1)
				}
				list, err := newClient(cfg, log).Papers(context.Background())
				if err != nil {
					ui.Bad.Printf("  Could not list papers: %v\n", err)
					os.Exit(1)
				}
				for _, p := range list {
					papers = append(papers, p.ID)
				}
				if len(papers) == 0 {
					ui.Warn.Printf("  %s No papers uploaded yet\n", ui.WarnIcon())
					return
				}
			}

			term := render.NewTerminal()
			sched := &driver.Manual{}
			d := driver.New(newFetcher(cfg, log), sched, term, render.TerminalViewport(80, 22), driver.Options{
				Params:        cfg.Layout,
				TicksPerFrame: cfg.View.TicksPerFrame,
				Logger:        log,
			})
			defer d.Close()

			m := tui.New(d, sched, term, papers, cfg.View.FrameInterval.Duration, cfg.Layout.MaxIterations)
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				ui.Bad.Printf("  View failed: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.ValidArgsFunction = paperCompletionFunc
	return cmd
}
