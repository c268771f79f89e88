package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietdv277/secops/internal/gcp"
	"github.com/vietdv277/secops/internal/ui"
)

// callerIdentity is replaced in tests.
var callerIdentity = gcp.GetCallerIdentity

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show resolved settings and authentication status",
		Long: `Display the settings the other commands would use, the active context,
and whether Application Default Credentials yield a valid access token.

Examples:
  secops status`,
		Args: cobra.NoArgs,
		RunE: a.runStatus,
	}
}

func (a *app) runStatus(cmd *cobra.Command, args []string) error {
	s, ctxName, err := a.settings()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current Status")
	fmt.Fprintln(out, ui.MutedStyle.Render("─────────────────────────────────"))
	fmt.Fprintln(out)

	if ctxName == "" {
		fmt.Fprintf(out, "%-14s%s\n", "Context:", ui.MutedStyle.Render("(not set)"))
	} else {
		fmt.Fprintf(out, "%-14s%s\n", "Context:", ui.HeaderStyle.Render(ctxName))
	}
	ui.PrintSettings(out, s)
	fmt.Fprintln(out)

	ctx, cancel := a.withTimeout(cmd.Context())
	defer cancel()

	fmt.Fprintf(out, "%-14s", "Auth:")
	identity, err := callerIdentity(ctx, s.Project)
	if err != nil {
		fmt.Fprintln(out, ui.ErrorStyle.Render("✗ Not authenticated"))
		fmt.Fprintf(out, "%-14s%s\n", "", ui.MutedStyle.Render(err.Error()))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To authenticate:")
		fmt.Fprintln(out, "  gcloud auth application-default login")
		return nil
	}

	fmt.Fprintln(out, ui.SuccessStyle.Render("✓ Application default credentials valid"))
	if identity.Email != "" {
		fmt.Fprintf(out, "%-14s%s\n", "Account:", identity.Email)
	}
	if identity.TokenType != "" {
		fmt.Fprintf(out, "%-14s%s\n", "Type:", identity.TokenType)
	}
	if identity.ProjectID != "" {
		fmt.Fprintf(out, "%-14s%s\n", "ADC project:", ui.GCPStyle.Render(identity.ProjectID))
	}
	if !identity.Expiry.IsZero() {
		fmt.Fprintf(out, "%-14s%s\n", "Token until:", identity.Expiry.Local().Format(time.RFC3339))
	}
	return nil
}
