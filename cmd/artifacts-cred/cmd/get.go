package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newGetCmd(v *viper.Viper) *cobra.Command {
	var uri string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the password for a feed URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(uri) == "" {
				_ = cmd.Help()
				return errUsage
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			return a.printPassword(ctx, cmd.OutOrStdout(), uri)
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "feed URL, e.g. https://pkgs.dev.azure.com/org/_packaging/feed/conda")
	return cmd
}
