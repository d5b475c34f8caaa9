// Package circuitbreaker implements a per-provider breaker that trips after
// consecutive failures and transitions back to half-open on the next status
// check once its cooldown has elapsed.
package circuitbreaker

import (
	"sync"
	"time"
)

const (
	defaultFailureThreshold = 3
	defaultCooldown         = 60 * time.Second
)

// breaker tracks consecutive failures for a single provider.
type breaker struct {
	mu        sync.Mutex
	failures  int
	trippedAt time.Time

	threshold int
	cooldown  time.Duration
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{threshold: threshold, cooldown: cooldown}
}

// isOpen reports whether the breaker is currently tripped. Reading it past
// the cooldown window resets the breaker to half-open: failures clear and
// the next call is allowed through, matching the teacher's IsOpen semantics.
func (b *breaker) isOpen(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.trippedAt.IsZero() {
		return false
	}
	if now.Sub(b.trippedAt) > b.cooldown {
		b.failures = 0
		b.trippedAt = time.Time{}
		return false
	}
	return true
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.trippedAt = time.Time{}
}

func (b *breaker) recordFailure(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.trippedAt = now
	}
}

func (b *breaker) snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := State{Failures: b.failures}
	if !b.trippedAt.IsZero() {
		t := b.trippedAt
		s.TrippedAt = &t
	}
	return s
}

// State is a read-only view of one provider's breaker, used for status
// reporting over the admin API.
type State struct {
	Failures  int
	TrippedAt *time.Time
	Open      bool
}

// Manager owns one breaker per provider name.
type Manager struct {
	mu        sync.Mutex
	breakers  map[string]*breaker
	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

// NewManager builds a Manager. A threshold or cooldown of zero falls back to
// the gateway defaults (3 consecutive failures, 60s cooldown).
func NewManager(threshold int, cooldown time.Duration) *Manager {
	if threshold <= 0 {
		threshold = defaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Manager{
		breakers:  make(map[string]*breaker),
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

func (m *Manager) get(provider string) *breaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.breakers[provider]; ok {
		return b
	}
	b := newBreaker(m.threshold, m.cooldown)
	m.breakers[provider] = b
	return b
}

// IsOpen reports whether provider is currently tripped, transparently
// resolving an elapsed cooldown to half-open as a side effect of the read.
func (m *Manager) IsOpen(provider string) bool {
	return m.get(provider).isOpen(m.now())
}

// RecordSuccess clears provider's failure count, closing the breaker.
func (m *Manager) RecordSuccess(provider string) {
	m.get(provider).recordSuccess()
}

// RecordFailure increments provider's failure count, tripping the breaker
// once the threshold is reached.
func (m *Manager) RecordFailure(provider string) {
	m.get(provider).recordFailure(m.now())
}

// Status returns a point-in-time snapshot of every provider the manager has
// seen, with Open resolved the same way IsOpen resolves it.
func (m *Manager) Status() map[string]State {
	m.mu.Lock()
	names := make([]string, 0, len(m.breakers))
	for name := range m.breakers {
		names = append(names, name)
	}
	m.mu.Unlock()

	out := make(map[string]State, len(names))
	for _, name := range names {
		b := m.get(name)
		s := b.snapshot()
		s.Open = m.IsOpen(name)
		out[name] = s
	}
	return out
}
