package utils

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLoggerReplacesGlobal(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Encoding: "json", ServiceName: "goal-planner-test"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	if Logger() != logger {
		t.Fatalf("expected Logger() to return the configured logger")
	}
	if zap.L() != logger {
		t.Fatalf("expected zap global logger to be replaced")
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}
}

func TestNewLoggerFallsBackOnBadLevel(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "loud", Encoding: "xml"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	if logger.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected info level fallback")
	}
	if !logger.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("expected info level enabled")
	}
}
