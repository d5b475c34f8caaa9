// Package pipeline sequences one completion request through every gateway
// stage: authenticate, redact, estimate cost, check budget, route, record
// usage, audit, respond. Every request reaches the Respond stage exactly
// once, on every path including failures.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/v-shakthi/aigateway/internal/audit"
	"github.com/v-shakthi/aigateway/internal/auth"
	"github.com/v-shakthi/aigateway/internal/budget"
	"github.com/v-shakthi/aigateway/internal/cost"
	"github.com/v-shakthi/aigateway/internal/providerrouter"
	"github.com/v-shakthi/aigateway/internal/providers"
	"github.com/v-shakthi/aigateway/internal/redact"
)

// ErrBudgetExceeded is returned when the tenant has no remaining budget for
// the estimated cost of the request. Callers should translate it to a 429
// response, not a 500.
var ErrBudgetExceeded = errors.New("budget exceeded")

// Request is the gateway-facing completion request, already authenticated.
type Request struct {
	RequestID         string
	TenantID          string
	PreferredProvider string
	Model             string
	Messages          []providers.Message
	MaxTokens         int
	Temperature       float64
}

// Response is what the pipeline returns to the HTTP layer on success.
type Response struct {
	Content           string
	ModelUsed         string
	Provider          string
	PromptTokens      int
	CompletionTokens  int
	EstimatedCostUSD  float64
	FallbackTriggered bool
	FallbackReason    string
	PIIEntitiesFound  []string
	PIIRedactionCount int
	LatencyMS         float64
	Timestamp         time.Time
}

// Pipeline wires together every gateway stage behind one entry point.
type Pipeline struct {
	redactor   redact.Redactor
	budgets    *budget.Manager
	router     *providerrouter.Router
	auditLog   *audit.Logger
	logger     *zap.Logger
	now        func() time.Time
}

// New builds a Pipeline from its already-constructed stage dependencies.
func New(redactor redact.Redactor, budgets *budget.Manager, router *providerrouter.Router, auditLog *audit.Logger, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		redactor: redactor,
		budgets:  budgets,
		router:   router,
		auditLog: auditLog,
		logger:   logger,
		now:      time.Now,
	}
}

// Authenticate resolves an API key to a tenant ID ahead of Run, keeping the
// auth stage separate so HTTP middleware can reuse it independently.
func Authenticate(authn *auth.TenantAuthenticator, apiKey string) (string, error) {
	return authn.Authenticate(apiKey)
}

// Run drives req through every pipeline stage and always reaches the
// Respond stage: every return path below logs an audit entry first.
func (p *Pipeline) Run(ctx context.Context, req Request) (Response, error) {
	start := p.now()

	redactedMessages, piiFound, piiCount, err := p.redactMessages(ctx, req.Messages)
	if err != nil {
		return p.fail(ctx, req, start, "", "", audit.StatusError, fmt.Sprintf("redaction failed: %v", err), piiFound, piiCount)
	}

	promptTokens := estimatePromptTokens(redactedMessages)
	estimatedCost := cost.Estimate(req.PreferredProvider, req.Model, promptTokens, req.MaxTokens)

	allowed, reason, err := p.budgets.Check(ctx, req.TenantID, estimatedCost)
	if err != nil {
		return p.fail(ctx, req, start, "", "", audit.StatusError, fmt.Sprintf("budget check failed: %v", err), piiFound, piiCount)
	}
	if !allowed {
		resp, _ := p.failWithCost(ctx, req, start, "", "", audit.StatusBudgetExceeded, reason, piiFound, piiCount, estimatedCost)
		return resp, fmt.Errorf("%w: %s", ErrBudgetExceeded, reason)
	}

	result, err := p.router.Route(ctx, redactedMessages, req.PreferredProvider, req.Model, req.MaxTokens, req.Temperature)
	if err != nil {
		_, _ = p.fail(ctx, req, start, "", "", audit.StatusError, err.Error(), piiFound, piiCount)
		return Response{}, err
	}

	actualCost := cost.Estimate(result.Response.Provider, result.Response.ModelUsed, result.Response.PromptTokens, result.Response.CompletionTokens)
	if err := p.budgets.Record(ctx, req.TenantID, actualCost); err != nil {
		p.logger.Error("failed to record budget usage", zap.Error(err), zap.String("tenant_id", req.TenantID))
	}

	latency := p.now().Sub(start)
	p.logAudit(ctx, audit.Entry{
		Timestamp:           start,
		RequestID:           req.RequestID,
		TenantID:            req.TenantID,
		ProviderRequested:   req.PreferredProvider,
		ProviderUsed:        result.Response.Provider,
		ModelUsed:           result.Response.ModelUsed,
		PromptTokens:        result.Response.PromptTokens,
		CompletionTokens:    result.Response.CompletionTokens,
		EstimatedCostUSD:    actualCost,
		PIIEntitiesRedacted: piiFound,
		PIIRedactionCount:   piiCount,
		LatencyMS:           float64(latency.Microseconds()) / 1000.0,
		FallbackTriggered:   result.FallbackTriggered,
		FallbackReason:      result.FallbackReason,
		Status:              audit.StatusSuccess,
	})

	return Response{
		Content:           result.Response.Content,
		ModelUsed:         result.Response.ModelUsed,
		Provider:          result.Response.Provider,
		PromptTokens:      result.Response.PromptTokens,
		CompletionTokens:  result.Response.CompletionTokens,
		EstimatedCostUSD:  actualCost,
		FallbackTriggered: result.FallbackTriggered,
		FallbackReason:    result.FallbackReason,
		PIIEntitiesFound:  piiFound,
		PIIRedactionCount: piiCount,
		LatencyMS:         float64(latency.Microseconds()) / 1000.0,
		Timestamp:         start.UTC(),
	}, nil
}

func (p *Pipeline) redactMessages(ctx context.Context, messages []providers.Message) ([]providers.Message, []string, int, error) {
	out := make([]providers.Message, len(messages))
	var entitiesFound []string
	redactionCount := 0

	for i, m := range messages {
		result, err := p.redactor.Redact(ctx, m.Content)
		if err != nil {
			return nil, nil, 0, err
		}
		out[i] = providers.Message{Role: m.Role, Content: result.RedactedText}
		entitiesFound = append(entitiesFound, result.EntitiesFound...)
		redactionCount += result.RedactionCount
	}

	return out, entitiesFound, redactionCount, nil
}

func estimatePromptTokens(messages []providers.Message) int {
	total := 0
	for _, m := range messages {
		total += providers.EstimateTokens(m.Content)
	}
	return total
}

// fail logs a terminal audit entry with no cost attached and returns the
// zero Response alongside a new error carrying msg, preserving Run's invariant
// that every path through the pipeline writes exactly one audit entry.
func (p *Pipeline) fail(ctx context.Context, req Request, start time.Time, provider, model string, status audit.Status, msg string, piiFound []string, piiCount int) (Response, error) {
	return p.failWithCost(ctx, req, start, provider, model, status, msg, piiFound, piiCount, 0)
}

func (p *Pipeline) failWithCost(ctx context.Context, req Request, start time.Time, provider, model string, status audit.Status, msg string, piiFound []string, piiCount int, estimatedCost float64) (Response, error) {
	latency := p.now().Sub(start)
	p.logAudit(ctx, audit.Entry{
		Timestamp:           start,
		RequestID:           req.RequestID,
		TenantID:            req.TenantID,
		ProviderRequested:   req.PreferredProvider,
		ProviderUsed:        provider,
		ModelUsed:           model,
		EstimatedCostUSD:    estimatedCost,
		PIIEntitiesRedacted: piiFound,
		PIIRedactionCount:   piiCount,
		LatencyMS:           float64(latency.Microseconds()) / 1000.0,
		Status:              status,
		ErrorMessage:        msg,
	})
	return Response{}, errors.New(msg)
}

func (p *Pipeline) logAudit(ctx context.Context, entry audit.Entry) {
	if err := p.auditLog.Log(entry); err != nil {
		p.logger.Error("failed to write audit entry", zap.Error(err), zap.String("request_id", entry.RequestID))
	}
}
