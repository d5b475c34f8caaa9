package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/v-shakthi/aigateway/internal/auth"
)

// NewKeysCommand builds the "keys" command group.
func NewKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Generate gateway API keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate a new tenant API key",
		Long:  "Generates a key in the sk-gateway-<random> shape. The operator is responsible for adding it to the gateway's auth.tenant_keys config under the chosen tenant ID.",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := auth.GenerateAPIKey()
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			if outputJSON {
				OutputJSON(map[string]string{"api_key": key})
				return nil
			}
			fmt.Println(key)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "generate-admin-token <subject>",
		Short: "Mint a short-lived admin bearer token",
		Long:  "Signs a bearer token against the gateway's own JWT secret (run with --config pointing at the gateway's config). Pass the result as --admin-token for remote admin operations such as budget set-limit.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !IsAdminDirectAccess() {
				return fmt.Errorf("generate-admin-token requires direct access (run with --config pointing at the gateway's config)")
			}
			token, err := adminIssuer.Issue(args[0])
			if err != nil {
				return fmt.Errorf("issue admin token: %w", err)
			}
			if outputJSON {
				OutputJSON(map[string]string{"admin_token": token})
				return nil
			}
			fmt.Println(token)
			return nil
		},
	})

	return cmd
}
