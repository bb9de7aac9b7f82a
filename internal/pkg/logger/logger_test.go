package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Wrap(zap.New(core))

	log.Info("dispatched", map[string]interface{}{"handler": "timer"})
	log.Error("history sink failed", errors.New("disk full"), map[string]interface{}{"id": "abc"})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["handler"]; got != "timer" {
		t.Errorf("handler field = %v, want timer", got)
	}
	if got := entries[1].ContextMap()["error"]; got != "disk full" {
		t.Errorf("error field = %v, want disk full", got)
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	log := NewNop()
	log.Debug("ignored", nil)
	log.Warn("ignored", map[string]interface{}{"k": 1})
	log.Error("ignored", nil, nil)
}
