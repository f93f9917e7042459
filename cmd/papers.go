package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/ui"
)

func papersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "papers",
		Aliases: []string{"ls"},
		Short:   "List the papers uploaded to the backend",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			log := newLogger()
			defer log.Sync()

			if offlineMode {
				ui.Bad.Println("  papers needs the backend; use `papergraph cache list` offline")
				os.Exit(1)
			}

			client := newClient(cfg, log)
			papers, err := client.Papers(context.Background())
			if err != nil {
				ui.Bad.Printf("  %v\n", err)
				os.Exit(1)
			}

			ui.Banner(os.Stdout, client.BaseURL())
			if len(papers) == 0 {
				fmt.Println("  No papers uploaded yet")
				return
			}

			rows := make([][]string, 0, len(papers))
			for _, p := range papers {
				rows = append(rows, []string{p.ID, p.Filename, strconv.Itoa(p.ChunksCount)})
			}
			ui.Table(os.Stdout, []string{"PAPER", "FILE", "CHUNKS"}, rows)
			fmt.Printf("\n  %d paper(s)\n", len(papers))
		},
	}
}
