package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a local account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return signIn("/register", user, pass)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a local account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return signIn("/login", user, pass)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if client.HasSession() {
				if err := client.SignOut(); err != nil {
					return err
				}
			}
			if err := cfg.ClearSession(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}

			NewOutput(cfg.Output).PrintMessage("Signed out")
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !client.HasSession() {
				return ErrNotSignedIn
			}

			var result Account
			if err := client.Get("/api/v1/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func signIn(path, user, pass string) error {
	session, err := client.SignIn(path, user, pass)
	if err != nil {
		return err
	}

	if err := cfg.SaveSession(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	var result Account
	if err := client.Get("/api/v1/me", &result); err != nil {
		return err
	}

	NewOutput(cfg.Output).Print(result)
	return nil
}
