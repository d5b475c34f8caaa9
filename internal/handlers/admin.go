package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/v-shakthi/aigateway/internal/budget"
)

// AdminBudgetHandler serves the operator-only budget routes: inspecting and
// mutating any tenant's limits, as opposed to BudgetHandler's self-service
// view scoped to the caller's own tenant.
type AdminBudgetHandler struct {
	budgets *budget.Manager
}

func NewAdminBudgetHandler(budgets *budget.Manager) *AdminBudgetHandler {
	return &AdminBudgetHandler{budgets: budgets}
}

// Get serves GET /v1/admin/budget/{tenant}.
func (h *AdminBudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")
	b, err := h.budgets.Get(r.Context(), tenantID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type setLimitRequest struct {
	DailyLimitUSD   float64 `json:"daily_limit_usd"`
	MonthlyLimitUSD float64 `json:"monthly_limit_usd"`
}

// SetLimit serves POST /v1/admin/budget/{tenant}/limit.
func (h *AdminBudgetHandler) SetLimit(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")

	var req setLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request_error", "could not parse request body: "+err.Error())
		return
	}

	limits := budget.Limits{DailyLimitUSD: req.DailyLimitUSD, MonthlyLimitUSD: req.MonthlyLimitUSD}
	if err := h.budgets.SetLimits(r.Context(), tenantID, limits); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal_error", fmt.Sprintf("set limits: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tenant_id": tenantID, "limits": limits})
}
