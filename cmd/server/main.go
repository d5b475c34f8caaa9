package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/v-shakthi/aigateway/internal/audit"
	"github.com/v-shakthi/aigateway/internal/auth"
	"github.com/v-shakthi/aigateway/internal/budget"
	"github.com/v-shakthi/aigateway/internal/circuitbreaker"
	"github.com/v-shakthi/aigateway/internal/config"
	"github.com/v-shakthi/aigateway/internal/logger"
	"github.com/v-shakthi/aigateway/internal/pipeline"
	"github.com/v-shakthi/aigateway/internal/providerrouter"
	"github.com/v-shakthi/aigateway/internal/providers"
	"github.com/v-shakthi/aigateway/internal/redact"
	"github.com/v-shakthi/aigateway/internal/router"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.Initialize(cfg.Logging)
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()

	providerRegistry, err := providers.NewRegistryFromConfig(ctx, cfg.Providers)
	if err != nil {
		log.Fatal("failed to build provider registry", zap.Error(err))
	}

	breakers := circuitbreaker.NewManager(cfg.Router.FailureThreshold, cfg.Router.Cooldown)
	gwRouter := providerrouter.New(providerRegistry, breakers, cfg.Providers.PriorityList, log)

	budgetStore, err := buildBudgetStore(cfg, log)
	if err != nil {
		log.Fatal("failed to build budget store", zap.Error(err))
	}
	budgetManager := budget.NewManager(budgetStore, budget.Limits{
		DailyLimitUSD:   cfg.Budget.DefaultDailyLimitUSD,
		MonthlyLimitUSD: cfg.Budget.DefaultMonthlyLimitUSD,
	})

	auditLogger, err := audit.NewLogger(cfg.Audit.FilePath, cfg.Audit.SIEMURL, cfg.Audit.SIEMTimeout, log)
	if err != nil {
		log.Fatal("failed to initialize audit logger", zap.Error(err))
	}

	redactor := redact.New(cfg.PII, log)

	gatewayPipeline := pipeline.New(redactor, budgetManager, gwRouter, auditLogger, log)
	authenticator := auth.NewTenantAuthenticator(cfg.Auth.TenantKeys)
	adminIssuer := auth.NewAdminTokenIssuer(cfg.Auth.JWTSecret, 0)

	handler := router.New(router.Deps{
		Config:         cfg,
		Logger:         log,
		Authenticator:  authenticator,
		AdminIssuer:    adminIssuer,
		Pipeline:       gatewayPipeline,
		Budgets:        budgetManager,
		ProviderRouter: gwRouter,
		AuditLog:       auditLogger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logStartupBanner(log, cfg.Server.Port, providerRegistry.Names())

	go func() {
		log.Info("aigateway server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Strings("providers", providerRegistry.Names()),
			zap.String("budget_backend", cfg.Budget.Backend),
			zap.String("pii_backend", cfg.PII.Backend))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server shutdown complete")
}

// buildBudgetStore selects the in-memory or Redis-backed budget store per
// config. Redis is required for multi-replica deployments to share spend.
func buildBudgetStore(cfg *config.Config, log *zap.Logger) (budget.Store, error) {
	if cfg.Budget.Backend != "redis" {
		return budget.NewMemStore(), nil
	}

	addr := strings.TrimPrefix(cfg.Redis.URL, "redis://")
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.Info("using redis-backed budget store", zap.String("addr", addr))
	return budget.NewRedisStore(client, ""), nil
}
