package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/v-shakthi/aigateway/internal/audit"
	"github.com/v-shakthi/aigateway/internal/auth"
	"github.com/v-shakthi/aigateway/internal/budget"
	"github.com/v-shakthi/aigateway/internal/circuitbreaker"
	"github.com/v-shakthi/aigateway/internal/config"
	"github.com/v-shakthi/aigateway/internal/pipeline"
	"github.com/v-shakthi/aigateway/internal/providerrouter"
	"github.com/v-shakthi/aigateway/internal/providers"
	"github.com/v-shakthi/aigateway/internal/redact"
)

type fakeAdapter struct {
	name string
}

func (f *fakeAdapter) Name() string        { return f.name }
func (f *fakeAdapter) IsAvailable() bool    { return true }
func (f *fakeAdapter) DefaultModel() string { return "fake-model" }
func (f *fakeAdapter) Complete(_ context.Context, _ []providers.Message, _ string, _ int, _ float64) (providers.AdapterResponse, error) {
	return providers.AdapterResponse{Content: "hello from fake", ModelUsed: "fake-model", Provider: f.name, PromptTokens: 5, CompletionTokens: 5}, nil
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return newTestHandlerWithLimits(t, budget.Limits{DailyLimitUSD: 100, MonthlyLimitUSD: 1000})
}

func newTestHandlerWithLimits(t *testing.T, limits budget.Limits) http.Handler {
	t.Helper()

	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST"}},
		Auth: config.AuthConfig{CredentialHeader: "X-API-Key", TenantKeys: map[string]string{"sk-gateway-test": "finance"}},
	}

	registry := providers.NewRegistry(&fakeAdapter{name: "anthropic"})
	breakers := circuitbreaker.NewManager(3, 60*time.Second)
	providerRouter := providerrouter.New(registry, breakers, []string{"anthropic"}, zap.NewNop())

	budgets := budget.NewManager(budget.NewMemStore(), limits)

	auditLog, err := audit.NewLogger(filepath.Join(t.TempDir(), "audit.jsonl"), "", 0, zap.NewNop())
	require.NoError(t, err)

	p := pipeline.New(redact.Disabled(), budgets, providerRouter, auditLog, zap.NewNop())
	authenticator := auth.NewTenantAuthenticator(cfg.Auth.TenantKeys)
	adminIssuer := auth.NewAdminTokenIssuer("test-admin-secret", time.Minute)

	return New(Deps{
		Config:         cfg,
		Logger:         zap.NewNop(),
		Authenticator:  authenticator,
		AdminIssuer:    adminIssuer,
		Pipeline:       p,
		Budgets:        budgets,
		ProviderRouter: providerRouter,
		AuditLog:       auditLog,
	})
}

func TestRouter_HealthIsPublic(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CompleteRequiresAuth(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/complete", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CompleteSucceedsWithValidKey(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/complete", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	req.Header.Set("X-API-Key", "sk-gateway-test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello from fake")
}

func TestRouter_CompleteOverBudgetReturns429(t *testing.T) {
	h := newTestHandlerWithLimits(t, budget.Limits{DailyLimitUSD: 0, MonthlyLimitUSD: 0})

	req := httptest.NewRequest(http.MethodPost, "/v1/complete", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	req.Header.Set("X-API-Key", "sk-gateway-test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "budget_exceeded")
}

func TestRouter_AdminBudgetRequiresBearerToken(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/budget/finance", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminBudgetSetLimitWithValidToken(t *testing.T) {
	h := newTestHandler(t)

	issuer := auth.NewAdminTokenIssuer("test-admin-secret", time.Minute)
	token, err := issuer.Issue("ops-operator")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/budget/finance/limit", strings.NewReader(`{"daily_limit_usd":50,"monthly_limit_usd":500}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "finance")
}

func TestRouter_UnknownRouteReturnsJSON404(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}
