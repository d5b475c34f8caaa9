// Package providerrouter selects a provider adapter for a completion
// request, falling back through the configured priority order on failure.
package providerrouter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/v-shakthi/aigateway/internal/circuitbreaker"
	"github.com/v-shakthi/aigateway/internal/providers"
)

// GatewayError is returned when every candidate provider failed or was
// skipped; ProviderErrors maps provider name to the reason it didn't serve
// the request.
type GatewayError struct {
	Message        string
	ProviderErrors map[string]string
}

func (e *GatewayError) Error() string { return e.Message }

// Result is the outcome of a successful Route call.
type Result struct {
	Response          providers.AdapterResponse
	FallbackTriggered bool
	FallbackReason    string
}

// Router orders providers by configured priority and tries each in turn,
// skipping unconfigured or breaker-open providers, until one succeeds.
type Router struct {
	registry     *providers.Registry
	breakers     *circuitbreaker.Manager
	priorityList []string
	logger       *zap.Logger
}

// New builds a Router. priorityList is the default fallback order; unknown
// or unregistered names in it are silently ignored when building the
// effective try-order for a request.
func New(registry *providers.Registry, breakers *circuitbreaker.Manager, priorityList []string, logger *zap.Logger) *Router {
	return &Router{registry: registry, breakers: breakers, priorityList: priorityList, logger: logger}
}

// Route tries providers in priority order (with preferredProvider, if any
// and registered, moved to the front) until one returns successfully.
func (r *Router) Route(ctx context.Context, messages []providers.Message, preferredProvider, model string, maxTokens int, temperature float64) (Result, error) {
	order := r.effectiveOrder(preferredProvider)

	providerErrors := make(map[string]string)
	var firstTried string
	var fallbackTriggered bool
	var fallbackReason string

	for _, name := range order {
		adapter, ok := r.registry.Get(name)
		if !ok {
			continue
		}
		if !adapter.IsAvailable() {
			providerErrors[name] = "not configured (missing API key)"
			continue
		}
		if r.breakers.IsOpen(name) {
			providerErrors[name] = "circuit breaker open (too many recent failures)"
			continue
		}

		if firstTried != "" {
			fallbackTriggered = true
			fallbackReason = fmt.Sprintf("fell back from %s: %s", firstTried, providerErrors[firstTried])
			r.logger.Warn("fallback triggered",
				zap.String("reason", fallbackReason),
				zap.String("trying", name))
		} else {
			firstTried = name
		}

		resp, err := adapter.Complete(ctx, messages, model, maxTokens, temperature)
		if err != nil {
			providerErrors[name] = err.Error()
			r.breakers.RecordFailure(name)
			r.logger.Error("provider failed", zap.String("provider", name), zap.Error(err))
			continue
		}

		r.breakers.RecordSuccess(name)
		return Result{Response: resp, FallbackTriggered: fallbackTriggered, FallbackReason: fallbackReason}, nil
	}

	names := make([]string, 0, len(providerErrors))
	for n := range providerErrors {
		names = append(names, n)
	}
	return Result{}, &GatewayError{
		Message:        fmt.Sprintf("all providers failed after trying: %v", names),
		ProviderErrors: providerErrors,
	}
}

// effectiveOrder builds the try-order for one request: the configured
// priority list, filtered to registered providers, with preferredProvider
// (if registered) moved to the front.
func (r *Router) effectiveOrder(preferredProvider string) []string {
	priority := make([]string, 0, len(r.priorityList))
	for _, name := range r.priorityList {
		if _, ok := r.registry.Get(name); ok {
			priority = append(priority, name)
		}
	}

	if preferredProvider == "" {
		return priority
	}
	if _, ok := r.registry.Get(preferredProvider); !ok {
		return priority
	}

	order := []string{preferredProvider}
	for _, name := range priority {
		if name != preferredProvider {
			order = append(order, name)
		}
	}
	return order
}

// ProviderStatus reports configured/availability and breaker state for one
// provider, used by the /v1/providers/status route.
type ProviderStatus struct {
	Configured     bool                 `json:"configured"`
	DefaultModel   string               `json:"default_model"`
	CircuitBreaker circuitbreaker.State `json:"circuit_breaker"`
}

// Status reports status for every provider the registry knows about.
func (r *Router) Status() map[string]ProviderStatus {
	breakerStates := r.breakers.Status()
	names := r.registry.Names()
	out := make(map[string]ProviderStatus, len(names))
	for _, name := range names {
		adapter, _ := r.registry.Get(name)
		out[name] = ProviderStatus{
			Configured:     adapter.IsAvailable(),
			DefaultModel:   adapter.DefaultModel(),
			CircuitBreaker: breakerStates[name],
		}
	}
	return out
}
