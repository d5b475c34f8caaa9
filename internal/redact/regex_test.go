package redact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexRedactor_RedactsKnownEntities(t *testing.T) {
	r := NewRegexRedactor(nil)

	result, err := r.Redact(context.Background(), "contact jane@example.com or call 555-123-4567")
	require.NoError(t, err)

	assert.Contains(t, result.RedactedText, "<EMAIL_ADDRESS>")
	assert.Contains(t, result.RedactedText, "<PHONE_NUMBER>")
	assert.NotContains(t, result.RedactedText, "jane@example.com")
	assert.ElementsMatch(t, result.EntitiesFound, []string{"EMAIL_ADDRESS", "PHONE_NUMBER"})
	assert.Equal(t, 2, result.RedactionCount)
}

func TestRegexRedactor_NoMatches(t *testing.T) {
	r := NewRegexRedactor(nil)

	result, err := r.Redact(context.Background(), "nothing sensitive here")
	require.NoError(t, err)

	assert.Equal(t, "nothing sensitive here", result.RedactedText)
	assert.Empty(t, result.EntitiesFound)
	assert.Zero(t, result.RedactionCount)
}

func TestRegexRedactor_IsIdempotent(t *testing.T) {
	r := NewRegexRedactor(nil)

	first, err := r.Redact(context.Background(), "ssn 123-45-6789, ip 10.0.0.1")
	require.NoError(t, err)

	second, err := r.Redact(context.Background(), first.RedactedText)
	require.NoError(t, err)

	assert.Equal(t, first.RedactedText, second.RedactedText)
	assert.Zero(t, second.RedactionCount)
}

func TestRegexRedactor_RestrictsToAllowedEntities(t *testing.T) {
	r := NewRegexRedactor([]string{"EMAIL_ADDRESS"})

	result, err := r.Redact(context.Background(), "jane@example.com and 10.0.0.1")
	require.NoError(t, err)

	assert.Contains(t, result.RedactedText, "<EMAIL_ADDRESS>")
	assert.Contains(t, result.RedactedText, "10.0.0.1")
}

func TestDisabledRedactor_Passthrough(t *testing.T) {
	r := Disabled()

	result, err := r.Redact(context.Background(), "jane@example.com")
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", result.RedactedText)
	assert.Zero(t, result.RedactionCount)
}
