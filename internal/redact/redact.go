// Package redact scrubs PII from prompt text before it leaves the gateway,
// per the pipeline's Redact stage.
package redact

import "context"

// Result is the outcome of a redaction pass over a single piece of text.
// The original text is never retained on this struct or anywhere downstream.
type Result struct {
	RedactedText    string
	EntitiesFound   []string
	RedactionCount  int
}

// Redactor detects and replaces PII entities with "<ENTITY_KIND>" placeholders.
type Redactor interface {
	Redact(ctx context.Context, text string) (Result, error)
}

// disabled is returned when PII redaction is turned off in config; it is a
// no-op passthrough so callers never need to branch on whether PII is on.
type disabled struct{}

func (disabled) Redact(_ context.Context, text string) (Result, error) {
	return Result{RedactedText: text}, nil
}

// Disabled returns a Redactor that always passes text through unchanged.
func Disabled() Redactor {
	return disabled{}
}
