package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/v-shakthi/aigateway/cmd/gatewayctl/commands"
	"github.com/v-shakthi/aigateway/internal/auth"
	"github.com/v-shakthi/aigateway/internal/budget"
	"github.com/v-shakthi/aigateway/internal/config"
)

var (
	cfgPath    string
	apiURL     string
	apiKey     string
	adminToken string
	outputJSON bool
	verbose    bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gatewayctl",
		Short: "Operator CLI for the AI gateway",
		Long: `gatewayctl manages tenant budgets and API keys for the AI gateway.
It supports direct access (loading the gateway's own config, for operators on
the same host) and remote access (talking to a running gateway's admin
routes over HTTP).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the gateway's config directory (enables direct access)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "gateway base URL for remote access")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "gateway API key for remote access")
	rootCmd.PersistentFlags().StringVar(&adminToken, "admin-token", "", "admin bearer token for remote admin operations (see keys generate-admin-token)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")

	ctx := context.Background()
	rootCmd.AddCommand(commands.NewBudgetCommand(ctx))
	rootCmd.AddCommand(commands.NewKeysCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())

	return rootCmd
}

func initConfig() error {
	if cfgPath != "" {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		store, err := buildBudgetStore(cfg)
		if err != nil {
			return fmt.Errorf("build budget store: %w", err)
		}
		manager := budget.NewManager(store, budget.Limits{
			DailyLimitUSD:   cfg.Budget.DefaultDailyLimitUSD,
			MonthlyLimitUSD: cfg.Budget.DefaultMonthlyLimitUSD,
		})
		commands.SetBudgetManager(manager)
		commands.SetAdminIssuer(auth.NewAdminTokenIssuer(cfg.Auth.JWTSecret, 0))
	}

	if apiURL != "" && apiKey != "" {
		commands.SetAPIConfig(apiURL, apiKey)
	}
	if apiURL != "" && adminToken != "" {
		commands.SetAdminAPIConfig(apiURL, adminToken)
	}

	commands.SetOutputJSON(outputJSON)
	commands.SetVerbose(verbose)

	return nil
}

// buildBudgetStore mirrors the gateway server's own store selection so a
// direct-mode CLI invocation reads and writes the same backend the server
// uses: in-memory state is otherwise process-local and invisible here.
func buildBudgetStore(cfg *config.Config) (budget.Store, error) {
	if cfg.Budget.Backend != "redis" {
		return budget.NewMemStore(), nil
	}

	addr := strings.TrimPrefix(cfg.Redis.URL, "redis://")
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return budget.NewRedisStore(client, ""), nil
}
