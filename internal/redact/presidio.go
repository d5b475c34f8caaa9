package redact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// presidioBackend calls a Presidio analyzer/anonymizer pair over HTTP. It
// mirrors the request/response shapes of a standard Presidio deployment:
// analyze returns entity spans, anonymize replaces them with a placeholder
// operator per entity type.
type presidioBackend struct {
	analyzerURL    string
	anonymizerURL  string
	language       string
	entities       []string
	scoreThreshold float64
	httpClient     *http.Client
	logger         *zap.Logger
}

type analyzeRequest struct {
	Text           string   `json:"text"`
	Language       string   `json:"language"`
	Entities       []string `json:"entities,omitempty"`
	ScoreThreshold float64  `json:"score_threshold,omitempty"`
}

type analyzeEntity struct {
	EntityType string  `json:"entity_type"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Score      float64 `json:"score"`
}

type anonymizeRequest struct {
	Text      string                    `json:"text"`
	Analyzer  []analyzeEntity           `json:"analyzer_results"`
	Operators map[string]operatorConfig `json:"operators"`
}

type operatorConfig struct {
	Type   string            `json:"type"`
	Params map[string]string `json:"params,omitempty"`
}

type anonymizeResponse struct {
	Text string `json:"text"`
}

// NewPresidioRedactor builds a Redactor backed by a Presidio analyzer +
// anonymizer pair reachable at baseURL (e.g. "http://presidio:3000"). In
// production the analyzer and anonymizer are typically two separate
// services; here they share one base URL with "/analyze" and "/anonymize"
// suffixes, matching a single-host Presidio deployment.
func NewPresidioRedactor(baseURL string, entities []string, scoreThreshold float64, timeout time.Duration, logger *zap.Logger) Redactor {
	base := strings.TrimSuffix(baseURL, "/")
	return &presidioBackend{
		analyzerURL:    base + "/analyze",
		anonymizerURL:  base + "/anonymize",
		language:       "en",
		entities:       entities,
		scoreThreshold: scoreThreshold,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger.Named("presidio"),
	}
}

func (p *presidioBackend) Redact(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{RedactedText: text}, nil
	}

	entities, err := p.analyze(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("presidio analyze: %w", err)
	}
	if len(entities) == 0 {
		return Result{RedactedText: text}, nil
	}

	redactedText, err := p.anonymize(ctx, text, entities)
	if err != nil {
		return Result{}, fmt.Errorf("presidio anonymize: %w", err)
	}

	seen := map[string]bool{}
	var found []string
	for _, e := range entities {
		if !seen[e.EntityType] {
			seen[e.EntityType] = true
			found = append(found, e.EntityType)
		}
	}

	return Result{
		RedactedText:   redactedText,
		EntitiesFound:  found,
		RedactionCount: len(entities),
	}, nil
}

func (p *presidioBackend) analyze(ctx context.Context, text string) ([]analyzeEntity, error) {
	reqBody, err := json.Marshal(analyzeRequest{
		Text:           text,
		Language:       p.language,
		Entities:       p.entities,
		ScoreThreshold: p.scoreThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal analyze request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.analyzerURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call analyzer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyzer returned status %d", resp.StatusCode)
	}

	var entities []analyzeEntity
	if err := json.NewDecoder(resp.Body).Decode(&entities); err != nil {
		return nil, fmt.Errorf("decode analyze response: %w", err)
	}
	return entities, nil
}

func (p *presidioBackend) anonymize(ctx context.Context, text string, entities []analyzeEntity) (string, error) {
	operators := make(map[string]operatorConfig, len(entities))
	for _, e := range entities {
		operators[e.EntityType] = operatorConfig{
			Type:   "replace",
			Params: map[string]string{"new_value": fmt.Sprintf("<%s>", e.EntityType)},
		}
	}

	reqBody, err := json.Marshal(anonymizeRequest{
		Text:      text,
		Analyzer:  entities,
		Operators: operators,
	})
	if err != nil {
		return "", fmt.Errorf("marshal anonymize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.anonymizerURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("build anonymize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call anonymizer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anonymizer returned status %d", resp.StatusCode)
	}

	var out anonymizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode anonymize response: %w", err)
	}
	return out.Text, nil
}
