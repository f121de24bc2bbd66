package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonwraymond/feedcred/health"
)

func newDoctorCmd(v *viper.Viper) *cobra.Command {
	var uri string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the credential provider is installed and a feed is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			var suite health.Suite
			suite.Add(health.HelperCheck(a.locator))
			if uri = strings.TrimSpace(uri); uri != "" {
				suite.Add(
					health.HostCheck(uri, a.backend.Supported),
					health.EndpointCheck(a.prober, uri),
				)
			}

			// Stdout stays free for the credential protocol.
			report := suite.Run(ctx)
			if err := report.Render(cmd.ErrOrStderr()); err != nil {
				return err
			}
			if report.Status() == health.StatusFail {
				return errUnhealthy
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "feed URL to check")
	return cmd
}
