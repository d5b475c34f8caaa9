// Package budget tracks per-tenant daily and monthly USD spend and enforces
// configured limits before a completion request is routed.
package budget

import (
	"context"
	"fmt"
	"time"
)

// TenantBudget is the point-in-time view returned to callers and the admin API.
type TenantBudget struct {
	TenantID            string  `json:"tenant_id"`
	DailyLimitUSD       float64 `json:"daily_limit_usd"`
	MonthlyLimitUSD     float64 `json:"monthly_limit_usd"`
	DailyUsedUSD        float64 `json:"daily_used_usd"`
	MonthlyUsedUSD      float64 `json:"monthly_used_usd"`
	DailyRemainingUSD   float64 `json:"daily_remaining_usd"`
	MonthlyRemainingUSD float64 `json:"monthly_remaining_usd"`
	RequestCountToday   int     `json:"request_count_today"`
}

// Limits is the configured daily/monthly ceiling for one tenant.
type Limits struct {
	DailyLimitUSD   float64
	MonthlyLimitUSD float64
}

// Store is the persistence contract for budget tracking. The in-memory
// implementation and the Redis-backed one are interchangeable: a
// multi-replica deployment swaps the store without touching Manager.
type Store interface {
	GetLimits(ctx context.Context, tenantID string, defaults Limits) (Limits, error)
	SetLimits(ctx context.Context, tenantID string, limits Limits) error
	GetUsage(ctx context.Context, tenantID string, now time.Time) (dailyUsed, monthlyUsed float64, requestsToday int, err error)
	RecordUsage(ctx context.Context, tenantID string, cost float64, now time.Time) error
	TenantIDs(ctx context.Context) ([]string, error)
}

// Manager enforces budget checks and records usage against a Store.
type Manager struct {
	store    Store
	defaults Limits
	now      func() time.Time
}

// NewManager builds a Manager over store, using defaults for any tenant that
// has no explicit limits set.
func NewManager(store Store, defaults Limits) *Manager {
	return &Manager{store: store, defaults: defaults, now: time.Now}
}

// Get returns the current budget snapshot for tenantID.
func (m *Manager) Get(ctx context.Context, tenantID string) (TenantBudget, error) {
	now := m.now()
	limits, err := m.store.GetLimits(ctx, tenantID, m.defaults)
	if err != nil {
		return TenantBudget{}, fmt.Errorf("get limits: %w", err)
	}

	dailyUsed, monthlyUsed, requestsToday, err := m.store.GetUsage(ctx, tenantID, now)
	if err != nil {
		return TenantBudget{}, fmt.Errorf("get usage: %w", err)
	}

	return TenantBudget{
		TenantID:            tenantID,
		DailyLimitUSD:       limits.DailyLimitUSD,
		MonthlyLimitUSD:     limits.MonthlyLimitUSD,
		DailyUsedUSD:        dailyUsed,
		MonthlyUsedUSD:      monthlyUsed,
		DailyRemainingUSD:   max0(limits.DailyLimitUSD - dailyUsed),
		MonthlyRemainingUSD: max0(limits.MonthlyLimitUSD - monthlyUsed),
		RequestCountToday:   requestsToday,
	}, nil
}

// Check reports whether estimatedCost can be spent without exceeding either
// the daily or monthly remaining budget. It must be called BEFORE the
// completion request is routed to a provider.
func (m *Manager) Check(ctx context.Context, tenantID string, estimatedCost float64) (allowed bool, reason string, err error) {
	b, err := m.Get(ctx, tenantID)
	if err != nil {
		return false, "", err
	}

	if estimatedCost > b.DailyRemainingUSD {
		return false, fmt.Sprintf(
			"daily budget exceeded for tenant %q: used $%.4f of $%.2f, resets at midnight UTC",
			tenantID, b.DailyUsedUSD, b.DailyLimitUSD,
		), nil
	}
	if estimatedCost > b.MonthlyRemainingUSD {
		return false, fmt.Sprintf(
			"monthly budget exceeded for tenant %q: used $%.4f of $%.2f",
			tenantID, b.MonthlyUsedUSD, b.MonthlyLimitUSD,
		), nil
	}
	return true, "", nil
}

// Record commits actualCost against tenantID's daily and monthly buckets.
// Call AFTER a successful provider response.
func (m *Manager) Record(ctx context.Context, tenantID string, actualCost float64) error {
	return m.store.RecordUsage(ctx, tenantID, actualCost, m.now())
}

// SetLimits overrides tenantID's daily/monthly limits.
func (m *Manager) SetLimits(ctx context.Context, tenantID string, limits Limits) error {
	return m.store.SetLimits(ctx, tenantID, limits)
}

// All returns the budget snapshot for every tenant the store has seen.
func (m *Manager) All(ctx context.Context) ([]TenantBudget, error) {
	ids, err := m.store.TenantIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	out := make([]TenantBudget, 0, len(ids))
	for _, id := range ids {
		b, err := m.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get budget for %q: %w", id, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
