package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vietdv277/secops/internal/chronicle"
	"github.com/vietdv277/secops/internal/ui"
)

func (a *app) newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Fetch a feed, then import the sample log entries",
		Long: `Run both demos in sequence with a single access token:

  1. HTTP GET of the feed definition, printed as received
  2. HTTP POST of two sample log entries to logs:import

This is also what secops does when run without a subcommand.

Examples:
  secops demo -l us -p my-project -c <customer-id> -f <feed-id> -fw <forwarder-id> -lg WINEVTLOG`,
		Args: cobra.NoArgs,
		RunE: a.runDemo,
	}
}

func (a *app) runDemo(cmd *cobra.Command, args []string) error {
	s, _, err := a.settings()
	if err != nil {
		return err
	}
	a.warnMissing(s)

	ctx, cancel := a.withTimeout(cmd.Context())
	defer cancel()

	client, err := a.newClient(ctx, s)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	ui.Banner(out, "DEMO 1 HTTP GET to fetch Feed Details")
	if err := a.getFeed(ctx, out, client, s.FeedID); err != nil {
		return err
	}

	ui.Banner(out, "DEMO 2 HTTP POST to import log entries")
	return a.importLogs(ctx, out, client, s, chronicle.SampleRecords())
}
