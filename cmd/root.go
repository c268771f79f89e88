package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vietdv277/secops/internal/chronicle"
	"github.com/vietdv277/secops/internal/config"
	"github.com/vietdv277/secops/internal/gcp"
	"github.com/vietdv277/secops/internal/logging"
	"golang.org/x/oauth2"
)

// Non-setting flag keys, also readable from SECOPS_<KEY> with "-" as "_".
const (
	keyConfig   = "config"
	keyContext  = "context"
	keyEndpoint = "endpoint"
	keyTimeout  = "timeout"
	keyLogLevel = "log-level"
	keyLogJSON  = "log-json"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v   *viper.Viper
	log zerolog.Logger
}

// Execute runs the root command.
func Execute() {
	root := newRootCmd()
	root.SetArgs(normalizeArgs(os.Args[1:]))
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "secops",
		Short: "SecOps - demo client for the Google SecOps (Chronicle) ingestion API",
		Long: `SecOps is a small command-line client for the Google SecOps (Chronicle) REST API.
It authenticates with Application Default Credentials, fetches the definition
of a feed and imports log entries for a log type.

Running secops without a subcommand performs both demos in sequence.

Examples:
  secops -l us -p my-project -c <customer-id> -f <feed-id> -fw <forwarder-id> -lg WINEVTLOG
  secops feed get <feed-id>          # Fetch a feed definition
  secops logs import                 # Import the two sample records
  secops use add prod -l us -p my-project -c <customer-id>
  secops use prod                    # Save identifiers in a named context
  secops status                      # Show resolved settings and ADC status`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.log = logging.New(cmd.ErrOrStderr(),
				logging.WithLevel(a.v.GetString(keyLogLevel)),
				logging.WithJSON(a.v.GetBool(keyLogJSON)),
			)
		},
		RunE: a.runDemo,
	}

	// Global persistent flags (available to all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.StringP(config.KeyLocation, "l", "", "Chronicle region, e.g. us, europe")
	pf.StringP(config.KeyProject, "p", "", "Google Cloud project ID or number")
	pf.StringP(config.KeyCustomerID, "c", "", "Chronicle customer (instance) ID")
	pf.StringP(config.KeyFeedID, "f", "", "Feed ID")
	pf.String(config.KeyForwarderID, "", "Forwarder ID (also -fw)")
	pf.String(config.KeyLogType, "", "Log type, e.g. WINEVTLOG (also -lg)")

	pf.String(keyConfig, "", "Config file (default ~/.secops.yaml)")
	pf.String(keyContext, "", "Use a saved context instead of the current one")
	pf.String(keyEndpoint, "", "Override the API base URL (default https://<location>-chronicle.googleapis.com)")
	pf.Duration(keyTimeout, 0, "Abort requests after this duration (0 = no timeout)")
	pf.String(keyLogLevel, "info", "Log level: debug, info, warn, error")
	pf.Bool(keyLogJSON, false, "Write logs as JSON lines")

	// Bind flags to viper
	_ = a.v.BindPFlags(pf)
	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(
		a.newDemoCmd(),
		a.newFeedCmd(),
		a.newLogsCmd(),
		a.newUseCmd(),
		a.newContextsCmd(),
		a.newStatusCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// legacyShorthands are two-letter flags pflag cannot express as shorthands.
var legacyShorthands = map[string]string{
	"-fw": "--" + config.KeyForwarderID,
	"-lg": "--" + config.KeyLogType,
}

// normalizeArgs rewrites -fw and -lg (with or without "=value") to their
// long form. Arguments after "--" are left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := legacyShorthands[name]; ok {
			arg = long
			if hasValue {
				arg += "=" + value
			}
		}
		out = append(out, arg)
	}
	return out
}

func (a *app) store() *config.Store {
	return config.NewStore(a.v.GetString(keyConfig))
}

// settings resolves the six identifiers: flag > env > saved context.
func (a *app) settings() (config.Settings, string, error) {
	store := a.store()

	var (
		ctx  *config.Context
		name string
		err  error
	)
	if name = a.v.GetString(keyContext); name != "" {
		ctx, err = store.Get(name)
	} else {
		ctx, name, err = store.Current()
	}
	if err != nil {
		return config.Settings{}, "", &chronicle.Error{Kind: chronicle.KindConfig, Op: "load settings", Err: err}
	}

	config.ApplyContext(a.v, ctx)
	s := config.FromViper(a.v)
	a.log.Debug().Str("context", name).Str("config", store.Path()).Msg("resolved settings")
	return s, name, nil
}

// warnMissing logs every empty key; requests are still made.
func (a *app) warnMissing(s config.Settings, keys ...string) {
	for _, k := range s.Missing(keys...) {
		a.log.Warn().Str("setting", k).Msg("setting is empty, the request path will contain an empty segment")
	}
}

// tokenSource resolves credentials for a project. Tests replace it.
var tokenSource = func(ctx context.Context, project string) (oauth2.TokenSource, error) {
	var opts []gcp.Option
	if project != "" {
		opts = append(opts, gcp.WithProject(project))
	}
	client, err := gcp.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client.TokenSource(), nil
}

func (a *app) newClient(ctx context.Context, s config.Settings) (*chronicle.Client, error) {
	ts, err := tokenSource(ctx, s.Project)
	if err != nil {
		return nil, &chronicle.Error{Kind: chronicle.KindAuth, Op: "resolve credentials", Err: err}
	}

	opts := []chronicle.Option{chronicle.WithLogger(a.log)}
	if endpoint := a.v.GetString(keyEndpoint); endpoint != "" {
		opts = append(opts, chronicle.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}

	target := chronicle.Target{
		Location:   s.Location,
		Project:    s.Project,
		CustomerID: s.CustomerID,
	}
	return chronicle.NewClient(target, ts, opts...), nil
}

// withTimeout applies --timeout to ctx when it is set.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := a.v.GetDuration(keyTimeout); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}
