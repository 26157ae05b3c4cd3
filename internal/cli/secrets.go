package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newSecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Read and submit secrets",
	}

	cmd.AddCommand(newSecretsListCmd())
	cmd.AddCommand(newSecretsSubmitCmd())

	return cmd
}

func newSecretsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every submitted secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SecretList
			if err := client.Get("/api/v1/secrets", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSecretsSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <secret>",
		Short: "Submit a secret for the signed-in account",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !client.HasSession() {
				return ErrNotSignedIn
			}

			req := map[string]string{"secret": strings.Join(args, " ")}
			var result Account
			if err := client.Put("/api/v1/me/secret", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
