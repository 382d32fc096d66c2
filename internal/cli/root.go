// Package cli implements playerctl, a command line stand-in for the game
// client that drives the backend's sign-in flow.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pscheid92/gamebridge/internal/client"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Output goes to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	cfg := DefaultConfig()
	var backend *client.Client

	rootCmd := &cobra.Command{
		Use:   "playerctl",
		Short: "Sign in to a gamebridge backend from the command line",
		Long: `playerctl plays the part of the game client against a gamebridge backend.

It posts Play Games server auth codes, fetches the player record bound to the
current session and keeps the session cookie in a file between invocations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(cfg.ServerURL, client.WithTimeout(cfg.Timeout))
			if err != nil {
				return err
			}
			cookies, err := cfg.LoadCookies()
			if err != nil {
				return err
			}
			c.RestoreSession(cookies)
			backend = c
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: GAMEBRIDGE_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.CookieFile, "cookie-file", cfg.CookieFile, "Session cookie file (env: GAMEBRIDGE_COOKIE_FILE)")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	clientFn := func() *client.Client { return backend }
	rootCmd.AddCommand(newSubmitCmd(cfg, clientFn))
	rootCmd.AddCommand(newGetCmd(cfg, clientFn))
	rootCmd.AddCommand(newTestCmd(cfg, clientFn))
	rootCmd.AddCommand(newHealthCmd(cfg, clientFn))

	// Persist the jar after every command, failed ones included: a 403
	// expires the session and the stale cookie must not be sent again.
	for _, sub := range rootCmd.Commands() {
		if sub.RunE != nil {
			sub.RunE = savingSession(sub.RunE, cfg, clientFn)
		}
	}

	return rootCmd
}

func savingSession(run func(*cobra.Command, []string) error, cfg *Config, backend func() *client.Client) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if saveErr := cfg.SaveCookies(backend().SessionCookies()); saveErr != nil {
			return errors.Join(err, fmt.Errorf("failed to save session: %w", saveErr))
		}
		return err
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
