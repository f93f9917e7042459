package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/cache"
)

// completionCmd generates shell completion scripts.
func completionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate completion scripts for your shell.

  # Bash (add to ~/.bashrc)
  eval "$(papergraph completion bash)"

  # Zsh (add to ~/.zshrc)
  eval "$(papergraph completion zsh)"

  # Fish
  papergraph completion fish | source

  # PowerShell
  papergraph completion powershell | Out-String | Invoke-Expression`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				_ = rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				_ = rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				_ = rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				_ = rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}

	return cmd
}

// paperCompletionFunc completes paper ids from the local cache, so it never
// waits on the network.
func paperCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	entries, err := cache.New(cache.Dir()).List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var completions []string
	for _, e := range entries {
		completions = append(completions, e.PaperID+"\t"+pluralConcepts(e.Concepts))
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

func pluralConcepts(n int) string {
	if n == 1 {
		return "1 concept"
	}
	return strconv.Itoa(n) + " concepts"
}
