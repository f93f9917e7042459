package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/cache"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/parallel"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/ui"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the offline graph cache",
		Long: `Graphs fetched from the backend are kept in the local cache, so
--offline can view and render them without a connection.`,
	}

	cmd.AddCommand(
		cacheFetchCmd(),
		cacheListCmd(),
		cacheBundleCmd(),
		cacheClearCmd(),
	)

	return cmd
}

func cacheFetchCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "fetch [paper-id...]",
		Short: "Download concept graphs for offline use",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			log := newLogger()
			defer log.Sync()

			client := newClient(cfg, log)
			ids := args
			if all {
				papers, err := client.Papers(context.Background())
				if err != nil {
					ui.Bad.Printf("  Could not list papers: %v\n", err)
					os.Exit(1)
				}
				ids = nil
				for _, p := range papers {
					ids = append(ids, p.ID)
				}
			}
			if len(ids) == 0 {
				cmd.Help()
				return
			}

			store := cache.New(cache.Dir())
			ui.Banner(os.Stdout, fmt.Sprintf("fetching %d graph(s)", len(ids)))

			tasks := make([]parallel.Task, len(ids))
			for i, id := range ids {
				tasks[i] = parallel.Task{
					Name: id,
					Fn: func(ctx context.Context) (string, error) {
						m, err := client.Graph(ctx, id)
						if err != nil {
							return "", err
						}
						if err := store.Put(m); err != nil {
							return "", err
						}
						stats := m.GetStats()
						return ui.Subtle.Sprintf("(%d concepts, %d connections)", stats.Concepts, stats.Connections), nil
					},
				}
			}

			results := parallel.Run(context.Background(), os.Stdout, tasks, cfg.View.Concurrency)
			fmt.Printf("\n  Cache: %s\n", store.Dir())
			if parallel.Failed(results) > 0 {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Fetch every paper the backend lists")
	return cmd
}

func cacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached graphs",
		Run: func(cmd *cobra.Command, args []string) {
			store := cache.New(cache.Dir())
			entries, err := store.List()
			if err != nil {
				ui.Bad.Printf("  %v\n", err)
				os.Exit(1)
			}

			ui.Banner(os.Stdout, "cached graphs")
			if len(entries) == 0 {
				fmt.Println("  Cache is empty. Run `papergraph cache fetch <paper-id>`")
				return
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.PaperID,
					fmt.Sprint(e.Concepts),
					fmt.Sprint(e.Connections),
					e.Updated.Format("2006-01-02 15:04"),
				})
			}
			ui.Table(os.Stdout, []string{"PAPER", "CONCEPTS", "CONNECTIONS", "UPDATED"}, rows)
			fmt.Printf("\n  Cache: %s\n", store.Dir())
		},
	}
}

func cacheBundleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bundle <output.tar.gz>",
		Short: "Create a portable bundle of cached graphs",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			output := args[0]
			ui.Banner(os.Stdout, "bundling")

			if err := cache.New(cache.Dir()).Bundle(output); err != nil {
				ui.Bad.Printf("  Bundle failed: %v\n", err)
				os.Exit(1)
			}

			ui.Good.Printf("  %s Bundle created: %s\n", ui.StatusIcon(true), output)
		},
	}
}

func cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached graph",
		Run: func(cmd *cobra.Command, args []string) {
			store := cache.New(cache.Dir())
			if err := store.Clear(); err != nil {
				ui.Bad.Printf("  %v\n", err)
				os.Exit(1)
			}
			ui.Good.Printf("  %s Cleared %s\n", ui.StatusIcon(true), store.Dir())
		},
	}
}
