package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietdv277/secops/internal/chronicle"
	"github.com/vietdv277/secops/internal/config"
	"github.com/vietdv277/secops/internal/ui"
)

func (a *app) newLogsCmd() *cobra.Command {
	var recordsFile string

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Log ingestion commands",
		Long: `Commands for importing logs into Chronicle.

Examples:
  secops logs import
  secops logs import --records records.yaml`,
	}

	logsImportCmd := &cobra.Command{
		Use:   "import",
		Short: "Import log entries for a log type",
		Long: `Import log entries through the logs:import endpoint of a log type.

Without --records, two sample entries are sent. The JSON payload and the HTTP
status code are printed; the response body is not inspected.

Records file format (YAML):
  records:
    - dim1: host-a
      metric1: "42"
      entry_time: 2024-12-01T23:30:30Z
      collection_time: 2024-12-01T23:31:30Z

Examples:
  secops logs import -fw <forwarder-id> -lg WINEVTLOG
  secops logs import --records records.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.settings()
			if err != nil {
				return err
			}
			a.warnMissing(s, config.KeyLocation, config.KeyProject, config.KeyCustomerID, config.KeyForwarderID, config.KeyLogType)

			records, err := loadRecords(recordsFile)
			if err != nil {
				return err
			}

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			client, err := a.newClient(ctx, s)
			if err != nil {
				return err
			}
			return a.importLogs(ctx, cmd.OutOrStdout(), client, s, records)
		},
	}
	logsImportCmd.Flags().StringVar(&recordsFile, "records", "", "YAML file with records to import instead of the samples")

	logsCmd.AddCommand(logsImportCmd)
	return logsCmd
}

func loadRecords(path string) ([]chronicle.LogRecord, error) {
	if path == "" {
		return chronicle.SampleRecords(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &chronicle.Error{Kind: chronicle.KindConfig, Op: "load records", Err: err}
	}
	defer func() { _ = f.Close() }()
	return chronicle.LoadRecords(f)
}

func (a *app) importLogs(ctx context.Context, out io.Writer, client *chronicle.Client, s config.Settings, records []chronicle.LogRecord) error {
	res, err := client.ImportLogs(ctx, s.ForwarderID, s.LogType, records)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Sent the following JSON to Chronicle API")
	fmt.Fprintln(out, string(res.Payload))
	fmt.Fprintf(out, "Received HTTP status code = %s\n",
		ui.StatusStyle(res.Response.StatusCode).Render(fmt.Sprint(res.Response.StatusCode)))

	if apiErr := res.Response.Err(); apiErr != nil {
		a.log.Warn().Err(apiErr).Int("records", len(records)).Msg("import was not accepted")
	}
	return nil
}
