package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/layout"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/ui"
)

func inspectCmd() *cobra.Command {
	var (
		asJSON bool
		top    int
	)

	cmd := &cobra.Command{
		Use:   "inspect <paper-id>",
		Short: "Print a paper's concepts and connections",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			log := newLogger()
			defer log.Sync()

			m, err := newFetcher(cfg, log).Graph(context.Background(), args[0])
			if err != nil {
				ui.Bad.Printf("  %v\n", err)
				os.Exit(1)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(m); err != nil {
					ui.Bad.Printf("  %v\n", err)
					os.Exit(1)
				}
				return
			}

			stats := m.GetStats()
			ui.Banner(os.Stdout, fmt.Sprintf("%s · %d concepts, %d connections", m.SubjectID(), stats.Concepts, stats.Connections))
			if m.IsEmpty() {
				ui.Warn.Printf("  %s No concepts extracted yet\n", ui.WarnIcon())
				return
			}
			if stats.Drawable < stats.Connections {
				ui.Warn.Printf("  %s %d connection(s) name missing concepts and are not drawn\n\n",
					ui.WarnIcon(), stats.Connections-stats.Drawable)
			}

			ui.Table(os.Stdout, []string{"CONCEPT", "SIZE", "RADIUS", "LINKS"}, conceptRows(m, top))
			fmt.Println()
			ui.Table(os.Stdout, []string{"FROM", "TO", "WEIGHT"}, connectionRows(m, top))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the graph as JSON")
	cmd.Flags().IntVarP(&top, "top", "n", 20, "Rows per table (0 for all)")
	cmd.ValidArgsFunction = paperCompletionFunc
	return cmd
}

func conceptRows(m *graph.Model, top int) [][]string {
	degree := make([]int, m.Len())
	for _, l := range m.Links() {
		degree[l.A]++
		degree[l.B]++
	}
	order := make([]int, m.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return m.Node(order[a]).Size > m.Node(order[b]).Size
	})
	if top > 0 && len(order) > top {
		order = order[:top]
	}

	rows := make([][]string, 0, len(order))
	for _, i := range order {
		n := m.Node(i)
		rows = append(rows, []string{
			n.Label,
			strconv.FormatFloat(n.Size, 'g', -1, 64),
			strconv.FormatFloat(layout.Radius(n.Size), 'g', -1, 64),
			strconv.Itoa(degree[i]),
		})
	}
	return rows
}

func connectionRows(m *graph.Model, top int) [][]string {
	links := m.Links()
	sort.SliceStable(links, func(a, b int) bool { return links[a].Weight > links[b].Weight })
	if top > 0 && len(links) > top {
		links = links[:top]
	}

	rows := make([][]string, 0, len(links))
	for _, l := range links {
		rows = append(rows, []string{
			m.Node(l.A).Label,
			m.Node(l.B).Label,
			strconv.FormatFloat(l.Weight, 'g', -1, 64),
		})
	}
	return rows
}
