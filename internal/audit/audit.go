// Package audit records a metadata-only append-only trail of every
// completion request. Prompt and completion content are never written here.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the outcome classification of a completed pipeline run.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusError          Status = "error"
	StatusBudgetExceeded Status = "budget_exceeded"
)

// Entry is one audit record. Every field here is metadata; content is
// deliberately absent from this type so it can never be logged by accident.
type Entry struct {
	Timestamp          time.Time `json:"timestamp"`
	RequestID          string    `json:"request_id"`
	TenantID           string    `json:"tenant_id"`
	ProviderRequested  string    `json:"provider_requested,omitempty"`
	ProviderUsed       string    `json:"provider_used"`
	ModelUsed          string    `json:"model_used"`
	PromptTokens       int       `json:"prompt_tokens"`
	CompletionTokens   int       `json:"completion_tokens"`
	EstimatedCostUSD   float64   `json:"estimated_cost_usd"`
	PIIEntitiesRedacted []string `json:"pii_entities_redacted"`
	PIIRedactionCount  int       `json:"pii_redaction_count"`
	LatencyMS          float64   `json:"latency_ms"`
	FallbackTriggered  bool      `json:"fallback_triggered"`
	FallbackReason     string    `json:"fallback_reason,omitempty"`
	Status             Status    `json:"status"`
	ErrorMessage       string    `json:"error_message,omitempty"`
}

// Logger writes Entry records to a local JSONL file and best-effort forwards
// them to a SIEM webhook. A SIEM failure never fails or delays the request
// that triggered the log.
type Logger struct {
	mu      sync.Mutex
	path    string
	siemURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewLogger builds a Logger writing to path, creating its parent directory
// if needed. siemURL may be empty to disable SIEM forwarding.
func NewLogger(path, siemURL string, siemTimeout time.Duration, logger *zap.Logger) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}
	if siemTimeout <= 0 {
		siemTimeout = 3 * time.Second
	}
	return &Logger{
		path:    path,
		siemURL: siemURL,
		client:  &http.Client{Timeout: siemTimeout},
		logger:  logger.Named("audit"),
	}, nil
}

// Log appends entry to the local JSONL file and, if a SIEM URL is
// configured, fires a non-blocking POST with the same payload.
func (l *Logger) Log(entry Entry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	l.mu.Lock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("open audit log: %w", err)
	}
	_, writeErr := f.Write(append(line, '\n'))
	closeErr := f.Close()
	l.mu.Unlock()

	if writeErr != nil {
		return fmt.Errorf("write audit entry: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close audit log: %w", closeErr)
	}

	if l.siemURL != "" {
		go l.shipToSIEM(entry)
	}
	return nil
}

func (l *Logger) shipToSIEM(entry Entry) {
	payload, err := json.Marshal(map[string]any{
		"event":      entry,
		"sourcetype": "ai_gateway",
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.siemURL, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Debug("siem delivery failed, continuing", zap.Error(err))
		return
	}
	_ = resp.Body.Close()
}

// Recent returns up to limit of the most recently written entries, most
// recent first. Malformed lines are skipped rather than failing the call.
func (l *Logger) Recent(limit int) ([]Entry, error) {
	l.mu.Lock()
	data, err := os.ReadFile(l.path)
	l.mu.Unlock()

	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}

	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
