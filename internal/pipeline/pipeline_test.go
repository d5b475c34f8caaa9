package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/v-shakthi/aigateway/internal/audit"
	"github.com/v-shakthi/aigateway/internal/budget"
	"github.com/v-shakthi/aigateway/internal/circuitbreaker"
	"github.com/v-shakthi/aigateway/internal/providerrouter"
	"github.com/v-shakthi/aigateway/internal/providers"
	"github.com/v-shakthi/aigateway/internal/redact"
)

type stubAdapter struct {
	name     string
	response providers.AdapterResponse
	err      error
}

func (s *stubAdapter) Name() string        { return s.name }
func (s *stubAdapter) IsAvailable() bool    { return true }
func (s *stubAdapter) DefaultModel() string { return "stub-model" }
func (s *stubAdapter) Complete(_ context.Context, _ []providers.Message, _ string, _ int, _ float64) (providers.AdapterResponse, error) {
	if s.err != nil {
		return providers.AdapterResponse{}, s.err
	}
	return s.response, nil
}

func newTestPipeline(t *testing.T, adapter *stubAdapter, limits budget.Limits) *Pipeline {
	t.Helper()

	registry := providers.NewRegistry(adapter)
	breakers := circuitbreaker.NewManager(3, 60*time.Second)
	router := providerrouter.New(registry, breakers, []string{adapter.name}, zap.NewNop())

	budgets := budget.NewManager(budget.NewMemStore(), limits)

	auditLog, err := audit.NewLogger(filepath.Join(t.TempDir(), "audit.jsonl"), "", 0, zap.NewNop())
	require.NoError(t, err)

	return New(redact.NewRegexRedactor(nil), budgets, router, auditLog, zap.NewNop())
}

func TestPipeline_RunSucceeds(t *testing.T) {
	adapter := &stubAdapter{name: "anthropic", response: providers.AdapterResponse{
		Content: "hello", ModelUsed: "claude-sonnet-4-6", Provider: "anthropic",
		PromptTokens: 10, CompletionTokens: 5,
	}}
	p := newTestPipeline(t, adapter, budget.Limits{DailyLimitUSD: 100, MonthlyLimitUSD: 1000})

	resp, err := p.Run(context.Background(), Request{
		RequestID: "req-1",
		TenantID:  "finance",
		Messages:  []providers.Message{{Role: "user", Content: "contact me at a@b.com"}},
		MaxTokens: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, "anthropic", resp.Provider)
	assert.Contains(t, resp.PIIEntitiesFound, "EMAIL_ADDRESS")
}

func TestPipeline_RunBlocksOverBudget(t *testing.T) {
	adapter := &stubAdapter{name: "anthropic", response: providers.AdapterResponse{
		Content: "hello", Provider: "anthropic", PromptTokens: 10, CompletionTokens: 5,
	}}
	p := newTestPipeline(t, adapter, budget.Limits{DailyLimitUSD: 0, MonthlyLimitUSD: 0})

	_, err := p.Run(context.Background(), Request{
		RequestID: "req-2",
		TenantID:  "finance",
		Messages:  []providers.Message{{Role: "user", Content: "hi"}},
		MaxTokens: 100,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	entries, err := p.auditLog.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusBudgetExceeded, entries[0].Status)
}

func TestPipeline_RunRecordsAuditOnProviderFailure(t *testing.T) {
	adapter := &stubAdapter{name: "anthropic", err: assertError{"boom"}}
	p := newTestPipeline(t, adapter, budget.Limits{DailyLimitUSD: 100, MonthlyLimitUSD: 1000})

	_, err := p.Run(context.Background(), Request{
		RequestID: "req-3",
		TenantID:  "finance",
		Messages:  []providers.Message{{Role: "user", Content: "hi"}},
		MaxTokens: 100,
	})
	require.Error(t, err)

	entries, err := p.auditLog.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusError, entries[0].Status)
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
