package gacha

import (
	"strings"
	"testing"
)

// Light smoke tests ensuring exported logger APIs do not panic and remain
// callable. If richer logging behavior (format, sinks, filtering) is added
// later, expand assertions here.
func TestSimpleLoggerLevels(t *testing.T) {
	logger := NewSimpleLogger()

	logger.Debug("debug message")
	logger.Info("info message", "cacheKey", "GET:host/banners?@anon")
	logger.Warn("warn message")
	logger.Error("error message", "err", "boom")
}

func TestSimpleLoggerOddPairs(t *testing.T) {
	logger := NewSimpleLogger()
	logger.Info("dangling key", "orphan")
}

func TestDefaultDebugConfig(t *testing.T) {
	cfg := DefaultDebugConfig()

	if cfg.Enabled {
		t.Error("Debug logging must be off by default")
	}
	if !cfg.LogRequests || !cfg.LogCache || !cfg.LogRetries || !cfg.LogRateLimit || !cfg.LogCircuit {
		t.Error("All event classes should be pre-enabled for when debug is switched on")
	}
	if cfg.RequestIDGen == nil {
		t.Fatal("Expected a default request ID generator")
	}

	id := cfg.RequestIDGen()
	if !strings.HasPrefix(id, "req_") || len(id) != len("req_")+8 {
		t.Errorf("Unexpected request ID format: %q", id)
	}
}
