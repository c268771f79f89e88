package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vietdv277/secops/internal/ui"
)

func (a *app) newContextsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "contexts",
		Aliases: []string{"ctx"},
		Short:   "List all configured contexts",
		Long: `List all saved contexts.

The current active context is marked with an asterisk (*).

Examples:
  secops contexts
  secops ctx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contexts, current, err := a.store().List()
			if err != nil {
				return fmt.Errorf("failed to list contexts: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(contexts) == 0 {
				fmt.Fprintln(out, "No contexts configured.")
				fmt.Fprintln(out)
				printNoContexts(out)
				return nil
			}

			ui.PrintContextTable(out, contexts, current)
			return nil
		},
	}
}
