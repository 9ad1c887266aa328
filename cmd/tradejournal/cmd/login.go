package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to enable trade entry",
	Long: `Check the configured credentials and remember the login in the
state directory until 'tradejournal logout'.

Example:
  tradejournal login -u trader -p secret`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved login",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var (
	loginUser string
	loginPass string
	loginCode string
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "", "username (required)")
	loginCmd.Flags().StringVarP(&loginPass, "password", "p", "", "password (required)")
	loginCmd.Flags().StringVar(&loginCode, "code", "", "TOTP code, when a TOTP secret is configured")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	gate := auth.NewGate(cfg.Auth)
	if err := gate.Check(loginUser, loginPass, loginCode); err != nil {
		log.Warn("login rejected", "username", loginUser)
		return err
	}
	if err := auth.SaveUser(stateDir, auth.User{Username: loginUser, IsAuthenticated: true}); err != nil {
		return fmt.Errorf("save login: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s\n", loginUser)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := auth.ClearUser(stateDir); err != nil {
		return fmt.Errorf("clear login: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
	return nil
}
