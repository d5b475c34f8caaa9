package providerrouter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/v-shakthi/aigateway/internal/circuitbreaker"
	"github.com/v-shakthi/aigateway/internal/providers"
)

type fakeAdapter struct {
	name      string
	available bool
	err       error
	response  providers.AdapterResponse
	calls     int
}

func (f *fakeAdapter) Name() string        { return f.name }
func (f *fakeAdapter) IsAvailable() bool    { return f.available }
func (f *fakeAdapter) DefaultModel() string { return "default-model" }
func (f *fakeAdapter) Complete(_ context.Context, _ []providers.Message, _ string, _ int, _ float64) (providers.AdapterResponse, error) {
	f.calls++
	if f.err != nil {
		return providers.AdapterResponse{}, f.err
	}
	return f.response, nil
}

func newTestRouter(adapters ...providers.Adapter) (*Router, *circuitbreaker.Manager) {
	registry := providers.NewRegistry(adapters...)
	breakers := circuitbreaker.NewManager(3, 60*time.Second)
	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	return New(registry, breakers, names, zap.NewNop()), breakers
}

func TestRouter_UsesFirstAvailableProvider(t *testing.T) {
	anthropic := &fakeAdapter{name: "anthropic", available: true, response: providers.AdapterResponse{Content: "hi", Provider: "anthropic"}}
	openai := &fakeAdapter{name: "openai", available: true}

	router, _ := newTestRouter(anthropic, openai)

	result, err := router.Route(context.Background(), nil, "", "", 100, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", result.Response.Provider)
	assert.False(t, result.FallbackTriggered)
	assert.Equal(t, 0, openai.calls)
}

func TestRouter_FallsBackOnFailure(t *testing.T) {
	anthropic := &fakeAdapter{name: "anthropic", available: true, err: errors.New("rate limited")}
	openai := &fakeAdapter{name: "openai", available: true, response: providers.AdapterResponse{Content: "hi", Provider: "openai"}}

	router, _ := newTestRouter(anthropic, openai)

	result, err := router.Route(context.Background(), nil, "", "", 100, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "openai", result.Response.Provider)
	assert.True(t, result.FallbackTriggered)
	assert.Contains(t, result.FallbackReason, "anthropic")
}

func TestRouter_SkipsUnconfiguredProvider(t *testing.T) {
	anthropic := &fakeAdapter{name: "anthropic", available: false}
	openai := &fakeAdapter{name: "openai", available: true, response: providers.AdapterResponse{Content: "hi", Provider: "openai"}}

	router, _ := newTestRouter(anthropic, openai)

	result, err := router.Route(context.Background(), nil, "", "", 100, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "openai", result.Response.Provider)
	assert.False(t, result.FallbackTriggered)
}

func TestRouter_PreferredProviderMovedToFront(t *testing.T) {
	anthropic := &fakeAdapter{name: "anthropic", available: true, response: providers.AdapterResponse{Content: "a", Provider: "anthropic"}}
	openai := &fakeAdapter{name: "openai", available: true, response: providers.AdapterResponse{Content: "o", Provider: "openai"}}

	router, _ := newTestRouter(anthropic, openai)

	result, err := router.Route(context.Background(), nil, "openai", "", 100, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "openai", result.Response.Provider)
}

func TestRouter_UnknownPreferredProviderIsIgnored(t *testing.T) {
	anthropic := &fakeAdapter{name: "anthropic", available: true, response: providers.AdapterResponse{Content: "a", Provider: "anthropic"}}

	router, _ := newTestRouter(anthropic)

	result, err := router.Route(context.Background(), nil, "nonexistent", "", 100, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", result.Response.Provider)
}

func TestRouter_AllProvidersFailedReturnsGatewayError(t *testing.T) {
	anthropic := &fakeAdapter{name: "anthropic", available: false}
	openai := &fakeAdapter{name: "openai", available: false}

	router, _ := newTestRouter(anthropic, openai)

	_, err := router.Route(context.Background(), nil, "", "", 100, 0.7)
	require.Error(t, err)

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Len(t, gwErr.ProviderErrors, 2)
}

func TestRouter_SkipsOpenBreaker(t *testing.T) {
	anthropic := &fakeAdapter{name: "anthropic", available: true}
	openai := &fakeAdapter{name: "openai", available: true, response: providers.AdapterResponse{Content: "hi", Provider: "openai"}}

	router, breakers := newTestRouter(anthropic, openai)
	breakers.RecordFailure("anthropic")
	breakers.RecordFailure("anthropic")
	breakers.RecordFailure("anthropic")

	result, err := router.Route(context.Background(), nil, "", "", 100, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "openai", result.Response.Provider)
	assert.Equal(t, 0, anthropic.calls)
}
