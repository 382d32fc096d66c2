package cli

import (
	"fmt"

	"github.com/pscheid92/gamebridge/internal/client"
	"github.com/spf13/cobra"
)

// testPlayerID is answered by the server with a canned record.
const testPlayerID = "test"

func newSubmitCmd(cfg *Config, backend func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <player-id> [auth-code]",
		Short: "Send a server auth code for a player",
		Long: `Send a one-time server auth code for a player and bind the session to it.

Without an auth code the server only confirms that it already holds a
credential for the player.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := ""
			if len(args) == 2 {
				code = args[1]
			}

			p, err := backend().SendAuthCode(cmd.Context(), args[0], code)
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			if p == nil {
				out.PrintMessage(fmt.Sprintf("Server already holds a credential for %s", args[0]))
				return nil
			}
			out.Print(p)
			return nil
		},
	}
}

func newGetCmd(cfg *Config, backend func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <player-id>",
		Short: "Show the player bound to the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := backend().GetPlayer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(p)
			return nil
		},
	}
}

func newTestCmd(cfg *Config, backend func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Fetch the canned test player to check the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := backend().GetPlayer(cmd.Context(), testPlayerID)
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(p)
			return nil
		},
	}
}
