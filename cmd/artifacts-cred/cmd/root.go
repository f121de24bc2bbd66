package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/jonwraymond/feedcred/config"
	"github.com/jonwraymond/feedcred/envelope"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "artifacts-cred",
		Short: "Conda credential helper for Azure Artifacts feeds",
		Long: `Reads a conda request envelope from stdin and prints the password for the
feed named by channel_alias. Prints nothing for hosts that are not Azure
Artifacts feeds or feeds that need no authentication.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive(cmd.InOrStdin()) {
				_ = cmd.Help()
				return errUsage
			}
			req, err := envelope.Decode(cmd.InOrStdin())
			if err != nil {
				return err
			}
			service, err := req.ServiceURL()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			return a.printPassword(ctx, cmd.OutOrStdout(), service)
		},
	}

	bindFlags(rootCmd.PersistentFlags(), v)
	rootCmd.AddCommand(
		newGetCmd(v),
		newDoctorCmd(v),
	)
	return rootCmd
}

// bindFlags registers the persistent flags and binds each to its config key,
// so a flag overrides the matching ARTIFACTS_CONDA_* variable.
func bindFlags(f *pflag.FlagSet, v *viper.Viper) {
	f.Bool("noninteractive", false, "never let the credential provider prompt")
	f.String("hosts", "", "extra feed host suffixes, separated by ';'")
	f.String("helper-path", "", "credential provider path (default: platform location under ~/.nuget/plugins)")
	f.Duration("helper-timeout", 0, "overall deadline for one resolution (0 = none)")
	f.Duration("cache-ttl", 0, "reuse a resolved credential within this process for this long (0 = off)")
	f.String("log-level", "warn", "debug|info|warn|error")
	f.String("log-format", "console", "console|json")
	f.String("tracing-exporter", "none", "otlp|jaeger|stdout|none")
	f.String("metrics-exporter", "none", "otlp|prometheus|stdout|none (prometheus is a pull reader; only useful when embedded in a long-running process)")
	f.String("config", "", "optional config file (yaml, toml or json)")

	bindings := map[string]string{
		config.KeyNonInteractive:  "noninteractive",
		config.KeyHosts:           "hosts",
		config.KeyHelperPath:      "helper-path",
		config.KeyHelperTimeout:   "helper-timeout",
		config.KeyCacheTTL:        "cache-ttl",
		config.KeyLogLevel:        "log-level",
		config.KeyLogFormat:       "log-format",
		config.KeyTracingExporter: "tracing-exporter",
		config.KeyMetricsExporter: "metrics-exporter",
		config.KeyConfigFile:      "config",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(fmt.Errorf("bind flag %s: %w", name, err))
		}
	}
}

// interactive reports whether r is a terminal, where waiting for an
// envelope would just hang.
func interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
