package budget

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test:budget:")
}

func testStores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemStore(),
		"redis":  newTestRedisStore(t),
	}
}

func TestManager_AllowsWithinBudget(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			m := NewManager(store, Limits{DailyLimitUSD: 10, MonthlyLimitUSD: 200})

			allowed, reason, err := m.Check(context.Background(), "finance-team", 1.5)
			require.NoError(t, err)
			require.True(t, allowed)
			require.Empty(t, reason)
		})
	}
}

func TestManager_DeniesOverDailyLimit(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := NewManager(store, Limits{DailyLimitUSD: 5, MonthlyLimitUSD: 200})

			require.NoError(t, m.Record(ctx, "eng-team", 4.5))

			allowed, reason, err := m.Check(ctx, "eng-team", 1.0)
			require.NoError(t, err)
			require.False(t, allowed)
			require.Contains(t, reason, "daily budget exceeded")
		})
	}
}

func TestManager_DeniesOverMonthlyLimit(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := NewManager(store, Limits{DailyLimitUSD: 1000, MonthlyLimitUSD: 10})

			require.NoError(t, m.Record(ctx, "mkt-team", 9.5))

			allowed, reason, err := m.Check(ctx, "mkt-team", 1.0)
			require.NoError(t, err)
			require.False(t, allowed)
			require.Contains(t, reason, "monthly budget exceeded")
		})
	}
}

func TestManager_RecordAccumulatesAndCountsRequests(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := NewManager(store, Limits{DailyLimitUSD: 10, MonthlyLimitUSD: 200})

			require.NoError(t, m.Record(ctx, "default", 1.0))
			require.NoError(t, m.Record(ctx, "default", 2.0))

			b, err := m.Get(ctx, "default")
			require.NoError(t, err)
			require.InDelta(t, 3.0, b.DailyUsedUSD, 0.0001)
			require.Equal(t, 2, b.RequestCountToday)
		})
	}
}

func TestManager_SetLimitsOverridesDefaults(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := NewManager(store, Limits{DailyLimitUSD: 10, MonthlyLimitUSD: 200})

			require.NoError(t, m.SetLimits(ctx, "custom-team", Limits{DailyLimitUSD: 50, MonthlyLimitUSD: 1000}))

			b, err := m.Get(ctx, "custom-team")
			require.NoError(t, err)
			require.Equal(t, 50.0, b.DailyLimitUSD)
			require.Equal(t, 1000.0, b.MonthlyLimitUSD)
		})
	}
}

func TestManager_AllListsEveryKnownTenant(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := NewManager(store, Limits{DailyLimitUSD: 10, MonthlyLimitUSD: 200})

			require.NoError(t, m.Record(ctx, "team-a", 1.0))
			require.NoError(t, m.Record(ctx, "team-b", 2.0))

			all, err := m.All(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
		})
	}
}
