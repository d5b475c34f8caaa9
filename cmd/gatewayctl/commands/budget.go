package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/v-shakthi/aigateway/internal/budget"
)

// NewBudgetCommand builds the "budget" command group.
func NewBudgetCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Inspect and manage tenant budgets",
	}

	cmd.AddCommand(newBudgetGetCommand(ctx))
	cmd.AddCommand(newBudgetSetLimitCommand(ctx))
	cmd.AddCommand(newBudgetListCommand(ctx))

	return cmd
}

func newBudgetGetCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "get <tenant-id>",
		Short: "Show a tenant's current budget status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := args[0]

			if IsDirectAccess() {
				b, err := budgetManager.Get(ctx, tenantID)
				if err != nil {
					return fmt.Errorf("get budget: %w", err)
				}
				printBudget(b)
				return nil
			}
			if IsAPIAccess() {
				resp, err := APIRequest("GET", "/v1/budget?tenant_id="+tenantID, nil)
				if err != nil {
					return err
				}
				defer resp.Body.Close()

				var b budget.TenantBudget
				if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
					return fmt.Errorf("decode response: %w", err)
				}
				printBudget(b)
				return nil
			}
			return fmt.Errorf("no local budget store or remote API configured")
		},
	}
}

func newBudgetSetLimitCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "set-limit <tenant-id> <daily-usd> <monthly-usd>",
		Short: "Set a tenant's daily and monthly budget limits",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := args[0]
			daily, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid daily limit: %w", err)
			}
			monthly, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid monthly limit: %w", err)
			}

			if IsDirectAccess() {
				if err := budgetManager.SetLimits(ctx, tenantID, budget.Limits{DailyLimitUSD: daily, MonthlyLimitUSD: monthly}); err != nil {
					return fmt.Errorf("set limits: %w", err)
				}
				fmt.Printf("limits set for tenant %q: daily=$%.2f monthly=$%.2f\n", tenantID, daily, monthly)
				return nil
			}

			if IsAdminAPIAccess() {
				resp, err := AdminAPIRequest("POST", "/v1/admin/budget/"+tenantID+"/limit", map[string]float64{
					"daily_limit_usd":   daily,
					"monthly_limit_usd": monthly,
				})
				if err != nil {
					return err
				}
				defer resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					return fmt.Errorf("set limits: gateway returned %s", resp.Status)
				}
				fmt.Printf("limits set for tenant %q: daily=$%.2f monthly=$%.2f\n", tenantID, daily, monthly)
				return nil
			}

			return fmt.Errorf("set-limit requires direct access (--config) or remote admin access (--api-url and --admin-token)")
		},
	}
}

func newBudgetListCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budget status for every known tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !IsDirectAccess() {
				return fmt.Errorf("list requires direct access")
			}

			all, err := budgetManager.All(ctx)
			if err != nil {
				return fmt.Errorf("list budgets: %w", err)
			}

			if outputJSON {
				OutputJSON(all)
				return nil
			}

			headers := []string{"Tenant", "Daily Used", "Daily Limit", "Monthly Used", "Monthly Limit", "Requests Today"}
			rows := make([][]string, 0, len(all))
			for _, b := range all {
				rows = append(rows, []string{
					b.TenantID,
					fmt.Sprintf("$%.4f", b.DailyUsedUSD),
					fmt.Sprintf("$%.2f", b.DailyLimitUSD),
					fmt.Sprintf("$%.4f", b.MonthlyUsedUSD),
					fmt.Sprintf("$%.2f", b.MonthlyLimitUSD),
					strconv.Itoa(b.RequestCountToday),
				})
			}
			OutputTable(headers, rows)
			return nil
		},
	}
}

func printBudget(b budget.TenantBudget) {
	if outputJSON {
		OutputJSON(b)
		return
	}
	fmt.Printf("Tenant: %s\n", b.TenantID)
	fmt.Printf("Daily:   $%.4f used of $%.2f (remaining $%.4f)\n", b.DailyUsedUSD, b.DailyLimitUSD, b.DailyRemainingUSD)
	fmt.Printf("Monthly: $%.4f used of $%.2f (remaining $%.4f)\n", b.MonthlyUsedUSD, b.MonthlyLimitUSD, b.MonthlyRemainingUSD)
	fmt.Printf("Requests today: %d\n", b.RequestCountToday)
}
