package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/config"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/ui"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the papergraph configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Run: func(cmd *cobra.Command, args []string) {
				if err := toml.NewEncoder(os.Stdout).Encode(loadConfig()); err != nil {
					ui.Bad.Printf("  %v\n", err)
					os.Exit(1)
				}
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(config.Path())
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write a config file with the defaults",
			Run: func(cmd *cobra.Command, args []string) {
				created, err := config.EnsureExists()
				if err != nil {
					ui.Bad.Printf("  %v\n", err)
					os.Exit(1)
				}
				if !created {
					fmt.Printf("  Config already exists: %s\n", config.Path())
					return
				}
				ui.Good.Printf("  %s Wrote %s\n", ui.StatusIcon(true), config.Path())
			},
		},
	)

	return cmd
}
