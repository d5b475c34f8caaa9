package redact

import (
	"time"

	"go.uber.org/zap"

	"github.com/v-shakthi/aigateway/internal/config"
)

// New builds the Redactor selected by config: disabled, regex fallback, or
// the Presidio-backed rich engine.
func New(cfg config.PIIConfig, logger *zap.Logger) Redactor {
	if !cfg.Enabled {
		return Disabled()
	}

	if cfg.Backend == "presidio" && cfg.PresidioURL != "" {
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		return NewPresidioRedactor(cfg.PresidioURL, cfg.Entities, cfg.ScoreThreshold, timeout, logger)
	}

	return NewRegexRedactor(cfg.Entities)
}
