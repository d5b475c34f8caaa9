package main

import (
	"strconv"

	"go.uber.org/zap"
)

// logStartupBanner announces the gateway's identity and reachable
// endpoints the way the original CLI entrypoint printed its boot banner,
// rendered here as a structured log line instead of a raw print.
func logStartupBanner(log *zap.Logger, port int, providers []string) {
	addr := "http://localhost:" + strconv.Itoa(port)
	log.Info("Enterprise AI Gateway starting",
		zap.String("version", "1.0.0"),
		zap.String("features", "multi-provider, PII redaction, budget management"),
		zap.String("api", addr),
		zap.String("metrics", addr+"/metrics"),
		zap.Strings("providers", providers))
}
