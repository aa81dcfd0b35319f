// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"devs-cli/internal/config"
	"devs-cli/internal/i18n"
	"devs-cli/internal/invocation"

	"github.com/spf13/cobra"
)

// newHistoryCommand creates the `devs history` command.
func newHistoryCommand(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: i18n.Sprintf(s.locale, i18n.HistoryShort),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := s.app.History.Entries(limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(w, SubtitleStyle.Render("(no history recorded)"))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintln(w, config.AppName+" "+invocation.QuoteParams(e.Args))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of most recent invocations to show (0 for all)")
	return cmd
}
