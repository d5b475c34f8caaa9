package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_OpensAfterThreshold(t *testing.T) {
	m := NewManager(3, 60*time.Second)

	assert.False(t, m.IsOpen("anthropic"))

	m.RecordFailure("anthropic")
	m.RecordFailure("anthropic")
	assert.False(t, m.IsOpen("anthropic"))

	m.RecordFailure("anthropic")
	assert.True(t, m.IsOpen("anthropic"))
}

func TestManager_SuccessResetsFailures(t *testing.T) {
	m := NewManager(3, 60*time.Second)

	m.RecordFailure("openai")
	m.RecordFailure("openai")
	m.RecordSuccess("openai")
	m.RecordFailure("openai")
	m.RecordFailure("openai")

	assert.False(t, m.IsOpen("openai"))
}

func TestManager_HalfOpenAfterCooldown(t *testing.T) {
	m := NewManager(3, 60*time.Second)
	fixed := time.Now()
	m.now = func() time.Time { return fixed }

	m.RecordFailure("gemini")
	m.RecordFailure("gemini")
	m.RecordFailure("gemini")
	assert.True(t, m.IsOpen("gemini"))

	m.now = func() time.Time { return fixed.Add(61 * time.Second) }
	assert.False(t, m.IsOpen("gemini"))

	state := m.Status()["gemini"]
	assert.Equal(t, 0, state.Failures)
	assert.False(t, state.Open)
}

func TestManager_IndependentPerProvider(t *testing.T) {
	m := NewManager(1, 60*time.Second)

	m.RecordFailure("anthropic")
	assert.True(t, m.IsOpen("anthropic"))
	assert.False(t, m.IsOpen("openai"))
}
