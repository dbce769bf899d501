package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &Logger{z: zap.New(core)}, logs
}

func TestEventFields(t *testing.T) {
	l, logs := observed(zapcore.InfoLevel)
	l.With(zap.String("conn", "c1")).Event("match_started", "ABC123", "c1", "2 players")

	entries := logs.FilterMessage("game event").All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	for key, want := range map[string]string{"event": "match_started", "room": "ABC123", "actor": "c1", "conn": "c1"} {
		if fields[key] != want {
			t.Errorf("field %s = %v, want %s", key, fields[key], want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	l, logs := observed(zapcore.WarnLevel)
	l.Debug("noise")
	l.Info("chatter")
	l.Warn("room full")
	l.Error("archive failed")
	if logs.Len() != 2 {
		t.Errorf("expected only warn and error, got %d entries", logs.Len())
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	l := NewLogger("shouty")
	if !l.z.Core().Enabled(zapcore.InfoLevel) || l.z.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("unknown levels should log at info")
	}
	NewNop().Info("discarded")
}
