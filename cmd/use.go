package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vietdv277/secops/internal/config"
	"github.com/vietdv277/secops/internal/ui"
)

func (a *app) newUseCmd() *cobra.Command {
	useCmd := &cobra.Command{
		Use:   "use [context-name]",
		Short: "Set the active context",
		Long: `Set the active context for subsequent commands.

A context is a named set of identifiers (location, project, customer ID,
feed ID, forwarder ID, log type) saved in the config file. Flags and
SECOPS_* environment variables still take precedence over it.

Without an argument an interactive selector is shown.

Examples:
  secops use prod           # Switch to the "prod" context
  secops use                # Pick a context interactively`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runUse,
	}

	useAddCmd := &cobra.Command{
		Use:   "add <context-name>",
		Short: "Add or update a context",
		Long: `Add a context, or update the given fields of an existing one.
Only flags given on the command line are stored.

Examples:
  secops use add prod -l us -p my-project -c <customer-id>
  secops use add prod -fw <forwarder-id> -lg WINEVTLOG`,
		Args: cobra.ExactArgs(1),
		RunE: a.runUseAdd,
	}

	useDeleteCmd := &cobra.Command{
		Use:   "delete <context-name>",
		Short: "Delete a context",
		Long: `Delete a context configuration.

Examples:
  secops use delete old-env`,
		Args:    cobra.ExactArgs(1),
		Aliases: []string{"rm", "remove"},
		RunE:    a.runUseDelete,
	}

	useCmd.AddCommand(useAddCmd, useDeleteCmd)
	return useCmd
}

func (a *app) runUse(cmd *cobra.Command, args []string) error {
	store := a.store()
	out := cmd.OutOrStdout()

	var contextName string
	if len(args) == 1 {
		contextName = args[0]
	} else {
		contexts, current, err := store.List()
		if err != nil {
			return err
		}
		if len(contexts) == 0 {
			printNoContexts(out)
			return nil
		}
		contextName, err = ui.SelectContext(contexts, current)
		if err != nil {
			return err
		}
	}

	// Try to set the context
	if err := store.SetCurrent(contextName); err != nil {
		// If context doesn't exist, show helpful message
		contexts, current, listErr := store.List()
		if listErr != nil {
			return err
		}

		fmt.Fprintf(out, "Context %q not found.\n\n", contextName)

		if len(contexts) == 0 {
			printNoContexts(out)
		} else {
			fmt.Fprintln(out, "Available contexts:")
			for _, name := range config.SortedNames(contexts) {
				marker := "  "
				if name == current {
					marker = "* "
				}
				fmt.Fprintf(out, "  %s%s\n", marker, name)
			}
		}
		return nil
	}

	ctx, _, err := store.Current()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Switched to context: %s\n", contextName)
	ui.PrintSettings(out, ctx.Settings())
	return nil
}

func (a *app) runUseAdd(cmd *cobra.Command, args []string) error {
	contextName := args[0]
	store := a.store()

	ctx, err := store.Get(contextName)
	if err != nil {
		ctx = &config.Context{}
	}

	s := ctx.Settings()
	fields := map[string]*string{
		config.KeyLocation:    &s.Location,
		config.KeyProject:     &s.Project,
		config.KeyCustomerID:  &s.CustomerID,
		config.KeyFeedID:      &s.FeedID,
		config.KeyForwarderID: &s.ForwarderID,
		config.KeyLogType:     &s.LogType,
	}
	changed := 0
	for key, field := range fields {
		if !cmd.Flags().Changed(key) {
			continue
		}
		val, err := cmd.Flags().GetString(key)
		if err != nil {
			return err
		}
		*field = val
		changed++
	}
	if changed == 0 {
		return fmt.Errorf("nothing to save: pass at least one of --location, --project, --customerid, --feedid, --forwarderid, --logtype")
	}

	if err := store.Add(contextName, config.ContextFromSettings(s)); err != nil {
		return fmt.Errorf("failed to add context: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Context saved: %s\n", contextName)
	ui.PrintSettings(out, s)
	fmt.Fprintln(out, "\nTo use this context:")
	fmt.Fprintf(out, "  secops use %s\n", contextName)

	return nil
}

func (a *app) runUseDelete(cmd *cobra.Command, args []string) error {
	contextName := args[0]

	if err := a.store().Delete(contextName); err != nil {
		return fmt.Errorf("failed to delete context: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Context deleted: %s\n", contextName)
	return nil
}

func printNoContexts(out io.Writer) {
	fmt.Fprintln(out, "No contexts configured. Add one with:")
	fmt.Fprintln(out, "  secops use add prod -l <location> -p <project> -c <customer-id>")
}
