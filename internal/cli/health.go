package cli

import (
	"github.com/pscheid92/gamebridge/internal/client"
	"github.com/spf13/cobra"
)

func newHealthCmd(cfg *Config, backend func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := backend().Health(cmd.Context())
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(report)
			return nil
		},
	}
}
