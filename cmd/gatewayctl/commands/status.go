package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCommand builds the "status" command, reporting provider
// availability and circuit breaker state from a running gateway.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show provider availability and circuit breaker status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !IsAPIAccess() {
				return fmt.Errorf("status requires --api-url and --api-key")
			}

			resp, err := APIRequest("GET", "/v1/providers/status", nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			var status map[string]interface{}
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			if outputJSON {
				OutputJSON(status)
				return nil
			}

			for provider, raw := range status {
				fmt.Printf("%s: %v\n", provider, raw)
			}
			return nil
		},
	}
}
