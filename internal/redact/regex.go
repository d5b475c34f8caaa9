package redact

import (
	"context"
	"fmt"
	"regexp"
)

// regexBackend is the lightweight fallback used when no Presidio endpoint is
// configured. It covers the common entity kinds with fixed patterns, matching
// the fallback patterns the original redactor ships when Presidio is absent.
type regexBackend struct {
	entities []string
	patterns []namedPattern
}

type namedPattern struct {
	entityType string
	re         *regexp.Regexp
}

var defaultPatterns = []namedPattern{
	{"EMAIL_ADDRESS", regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)},
	{"PHONE_NUMBER", regexp.MustCompile(`\b(\+?1?\s?)?(\(?\d{3}\)?[\s.\-]?)(\d{3}[\s.\-]?\d{4})\b`)},
	{"CREDIT_CARD", regexp.MustCompile(`\b(?:\d{4}[\s\-]?){3}\d{4}\b`)},
	{"US_SSN", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"IP_ADDRESS", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
}

// NewRegexRedactor builds the fallback Redactor. entities restricts which
// kinds are scanned for; an empty list scans every pattern this backend knows.
func NewRegexRedactor(entities []string) Redactor {
	patterns := defaultPatterns
	if len(entities) > 0 {
		allow := make(map[string]bool, len(entities))
		for _, e := range entities {
			allow[e] = true
		}
		patterns = nil
		for _, p := range defaultPatterns {
			if allow[p.entityType] {
				patterns = append(patterns, p)
			}
		}
	}
	return &regexBackend{entities: entities, patterns: patterns}
}

func (r *regexBackend) Redact(_ context.Context, text string) (Result, error) {
	redacted := text
	var found []string
	total := 0

	for _, p := range r.patterns {
		matches := p.re.FindAllString(redacted, -1)
		if len(matches) == 0 {
			continue
		}
		found = append(found, p.entityType)
		total += len(matches)
		redacted = p.re.ReplaceAllString(redacted, fmt.Sprintf("<%s>", p.entityType))
	}

	return Result{
		RedactedText:   redacted,
		EntitiesFound:  found,
		RedactionCount: total,
	}, nil
}
