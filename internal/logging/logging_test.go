package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New("info")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatalf("expected logger instance")
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be disabled at info level")
	}
	_ = logger.Sync()
}

func TestNewDebugLevel(t *testing.T) {
	logger, err := New("debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug to be enabled")
	}
	_ = logger.Sync()
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
