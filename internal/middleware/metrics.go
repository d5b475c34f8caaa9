package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Go runtime and process metrics are automatically registered by promhttp.Handler()
// so we don't need to register them explicitly here.

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigateway_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aigateway_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	completionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigateway_completions_total",
			Help: "Total number of completion requests by provider and outcome",
		},
		[]string{"tenant_id", "provider", "status"},
	)

	completionTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigateway_completion_tokens_total",
			Help: "Total tokens consumed by completion requests",
		},
		[]string{"tenant_id", "provider", "type"}, // type: prompt, completion
	)

	completionCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigateway_completion_cost_usd_total",
			Help: "Total estimated USD cost of completion requests",
		},
		[]string{"tenant_id", "provider"},
	)

	fallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigateway_fallbacks_total",
			Help: "Total number of requests that fell back to a non-preferred provider",
		},
		[]string{"tenant_id"},
	)

	budgetRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aigateway_budget_rejections_total",
			Help: "Total number of requests rejected for exceeding a tenant's budget",
		},
		[]string{"tenant_id"},
	)

	circuitBreakerOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aigateway_circuit_breaker_open",
			Help: "Circuit breaker open state per provider (1 = open, 0 = closed)",
		},
		[]string{"provider"},
	)
)

// Metrics collects Prometheus metrics for every HTTP request.
func Metrics(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseRecorder(w)

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.StatusCode())
			pattern := routePattern(r)

			httpRequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, pattern, status).Observe(duration)

			if duration > 10 {
				logger.Warn("slow request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Float64("duration_seconds", duration),
					zap.Int("status", wrapped.StatusCode()),
				)
			}
		})
	}
}

// RecordCompletion records the outcome of one pipeline run for Prometheus.
func RecordCompletion(tenantID, provider, status string, promptTokens, respCompletionTokens int, costUSD float64, fallback bool) {
	completionsTotal.WithLabelValues(tenantID, provider, status).Inc()
	completionTokens.WithLabelValues(tenantID, provider, "prompt").Add(float64(promptTokens))
	completionTokens.WithLabelValues(tenantID, provider, "completion").Add(float64(respCompletionTokens))
	completionCostUSD.WithLabelValues(tenantID, provider).Add(costUSD)
	if fallback {
		fallbacksTotal.WithLabelValues(tenantID).Inc()
	}
}

// RecordBudgetRejection records a request blocked by the budget stage.
func RecordBudgetRejection(tenantID string) {
	budgetRejectionsTotal.WithLabelValues(tenantID).Inc()
}

// SetCircuitBreakerState reports the current open/closed state for provider.
func SetCircuitBreakerState(provider string, open bool) {
	v := 0.0
	if open {
		v = 1.0
	}
	circuitBreakerOpen.WithLabelValues(provider).Set(v)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/complete"):
		return "/v1/complete"
	case strings.HasPrefix(path, "/v1/providers/status"):
		return "/v1/providers/status"
	case strings.HasPrefix(path, "/v1/budget"):
		return "/v1/budget"
	case strings.HasPrefix(path, "/v1/audit/recent"):
		return "/v1/audit/recent"
	case strings.HasPrefix(path, "/health"):
		return "/health"
	case strings.HasPrefix(path, "/metrics"):
		return "/metrics"
	default:
		return path
	}
}
