package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vietdv277/secops/internal/chronicle"
	"github.com/vietdv277/secops/internal/config"
)

func (a *app) newFeedCmd() *cobra.Command {
	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Feed commands",
		Long: `Commands for Chronicle feeds.

Examples:
  secops feed get <feed-id>`,
	}

	feedGetCmd := &cobra.Command{
		Use:   "get [feed-id]",
		Short: "Fetch a feed definition",
		Long: `Fetch the definition of a feed and print the response body as received.

The feed ID is taken from the argument, or from --feedid / SECOPS_FEEDID /
the current context. A non-2xx response is printed as well and does not
change the exit code.

Examples:
  secops feed get 0a1b2c3d-feed
  secops feed get -l us -p my-project -c <customer-id> -f <feed-id>`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.settings()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				s.FeedID = args[0]
			}
			a.warnMissing(s, config.KeyLocation, config.KeyProject, config.KeyCustomerID, config.KeyFeedID)

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			client, err := a.newClient(ctx, s)
			if err != nil {
				return err
			}
			return a.getFeed(ctx, cmd.OutOrStdout(), client, s.FeedID)
		},
	}

	feedCmd.AddCommand(feedGetCmd)
	return feedCmd
}

func (a *app) getFeed(ctx context.Context, out io.Writer, client *chronicle.Client, feedID string) error {
	resp, err := client.GetFeed(ctx, feedID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Request details for feed with ID = %s\n", feedID)
	fmt.Fprintln(out, "From HTTP GET to Chronicle API fetched these details:")
	fmt.Fprintln(out, string(resp.Body))

	if apiErr := resp.Err(); apiErr != nil {
		a.log.Warn().Err(apiErr).Int("status", resp.StatusCode).Msg("feed request was not successful")
	}
	return nil
}
