package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for stormbolt.

To load completions:

Bash:
  $ source <(stormbolt completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ stormbolt completion bash > /etc/bash_completion.d/stormbolt
  # macOS:
  $ stormbolt completion bash > $(brew --prefix)/etc/bash_completion.d/stormbolt

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ stormbolt completion zsh > "${fpath[1]}/_stormbolt"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ stormbolt completion fish | source

  # To load completions for each session, execute once:
  $ stormbolt completion fish > ~/.config/fish/completions/stormbolt.fish

PowerShell:
  PS> stormbolt completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> stormbolt completion powershell > stormbolt.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(c.Out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.Out)
			case "fish":
				return cmd.Root().GenFishCompletion(c.Out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.Out)
			}
			return nil
		},
	}

	return cmd
}
