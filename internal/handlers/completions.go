package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v-shakthi/aigateway/internal/budget"
	"github.com/v-shakthi/aigateway/internal/middleware"
	"github.com/v-shakthi/aigateway/internal/pipeline"
	"github.com/v-shakthi/aigateway/internal/providerrouter"
	"github.com/v-shakthi/aigateway/internal/providers"
)

// CompletionHandler serves POST /v1/complete by driving a request through
// the pipeline and translating its outcome to an HTTP response.
type CompletionHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

func NewCompletionHandler(p *pipeline.Pipeline, logger *zap.Logger) *CompletionHandler {
	return &CompletionHandler{pipeline: p, logger: logger}
}

type completionRequest struct {
	Provider    string              `json:"provider,omitempty"`
	Model       string              `json:"model,omitempty"`
	Messages    []providers.Message `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type completionResponse struct {
	RequestID         string   `json:"request_id"`
	Content           string   `json:"content"`
	Provider          string   `json:"provider"`
	ModelUsed         string   `json:"model_used"`
	PromptTokens      int      `json:"prompt_tokens"`
	CompletionTokens  int      `json:"completion_tokens"`
	TotalTokens       int      `json:"total_tokens"`
	EstimatedCostUSD  float64  `json:"estimated_cost_usd"`
	PIIRedacted       bool     `json:"pii_redacted"`
	PIIEntitiesFound  []string `json:"pii_entities_found,omitempty"`
	PIIRedactionCount int      `json:"pii_redaction_count"`
	LatencyMS         float64  `json:"latency_ms"`
	FallbackTriggered bool     `json:"fallback_triggered"`
	FallbackReason    string   `json:"fallback_reason,omitempty"`
	Timestamp         string   `json:"timestamp"`
}

func (h *CompletionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request_error", "could not parse request body: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_request_error", "messages must not be empty")
		return
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = 1024
	}

	requestID := uuid.NewString()
	tenantID := middleware.TenantID(r.Context())

	resp, err := h.pipeline.Run(r.Context(), pipeline.Request{
		RequestID:         requestID,
		TenantID:          tenantID,
		PreferredProvider: req.Provider,
		Model:             req.Model,
		Messages:          req.Messages,
		MaxTokens:         req.MaxTokens,
		Temperature:       req.Temperature,
	})
	if err != nil {
		h.writePipelineError(w, requestID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(completionResponse{
		RequestID:         requestID,
		Content:           resp.Content,
		Provider:          resp.Provider,
		ModelUsed:         resp.ModelUsed,
		PromptTokens:      resp.PromptTokens,
		CompletionTokens:  resp.CompletionTokens,
		TotalTokens:       resp.PromptTokens + resp.CompletionTokens,
		EstimatedCostUSD:  resp.EstimatedCostUSD,
		PIIRedacted:       len(resp.PIIEntitiesFound) > 0,
		PIIEntitiesFound:  resp.PIIEntitiesFound,
		PIIRedactionCount: resp.PIIRedactionCount,
		LatencyMS:         resp.LatencyMS,
		FallbackTriggered: resp.FallbackTriggered,
		FallbackReason:    resp.FallbackReason,
		Timestamp:         resp.Timestamp.Format(time.RFC3339),
	})
}

func (h *CompletionHandler) writePipelineError(w http.ResponseWriter, requestID string, err error) {
	if errors.Is(err, pipeline.ErrBudgetExceeded) {
		writeJSONErrorWithID(w, http.StatusTooManyRequests, requestID, "budget_exceeded", err.Error())
		return
	}

	var gwErr *providerrouter.GatewayError
	if errors.As(err, &gwErr) {
		writeJSONErrorWithID(w, http.StatusBadGateway, requestID, "all_providers_failed", gwErr.Error())
		return
	}

	h.logger.Error("completion pipeline failed", zap.Error(err), zap.String("request_id", requestID))
	writeJSONErrorWithID(w, http.StatusInternalServerError, requestID, "internal_error", err.Error())
}

func writeJSONError(w http.ResponseWriter, status int, errType, message string) {
	writeJSONErrorWithID(w, status, "", errType, message)
}

func writeJSONErrorWithID(w http.ResponseWriter, status int, requestID, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{
		"error": map[string]string{
			"message": message,
			"type":    errType,
		},
	}
	if requestID != "" {
		body["request_id"] = requestID
	}
	_ = json.NewEncoder(w).Encode(body)
}

// BudgetHandler serves the tenant-facing self-service budget endpoint.
type BudgetHandler struct {
	budgets *budget.Manager
}

func NewBudgetHandler(budgets *budget.Manager) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

// Get serves GET /v1/budget, returning the caller's own budget snapshot.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantID(r.Context())
	b, err := h.budgets.Get(r.Context(), tenantID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ProvidersHandler serves the provider status endpoint.
type ProvidersHandler struct {
	router *providerrouter.Router
}

func NewProvidersHandler(router *providerrouter.Router) *ProvidersHandler {
	return &ProvidersHandler{router: router}
}

// Status serves GET /v1/providers/status.
func (h *ProvidersHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.router.Status())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
