// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// newCompletionCommand creates the `devs completion` command. Project and
// method names come from the template in the working directory at the time
// the shell asks, so completions follow the template without regenerating.
func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for devs.

` + SubtitleStyle.Render("Bash:") + `
  eval "$(devs completion bash)"

` + SubtitleStyle.Render("Zsh:") + `
  devs completion zsh > "${fpath[1]}/_devs"

` + SubtitleStyle.Render("Fish:") + `
  devs completion fish > ~/.config/fish/completions/devs.fish

` + SubtitleStyle.Render("PowerShell:") + `
  devs completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
