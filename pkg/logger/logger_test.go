package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
	logger.Info(context.Background(), "test message", String("k", "v"))
}

func TestLoggerInitTo(t *testing.T) {
	var buf bytes.Buffer
	if err := InitTo(&buf); err != nil {
		t.Fatalf("InitTo: %v", err)
	}
	Named("cli").Info(context.Background(), "written", String("k", "v"))
	if err := Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"msg":"written"`) || !strings.Contains(out, `"logger":"cli"`) {
		t.Errorf("unexpected output %q", out)
	}
	if err := InitTo(nil); err == nil {
		t.Error("expected error for nil writer")
	}
}

func TestLoggerNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(core).Named("test")

	ctx := context.Background()
	l.Info(ctx, "trained", Int("rows", 10), Float64("accuracy", 0.5), Error(errors.New("boom")))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "test" {
		t.Errorf("expected logger name test, got %q", e.LoggerName)
	}
	fields := e.ContextMap()
	if fields["rows"] != int64(10) {
		t.Errorf("expected rows=10, got %v", fields["rows"])
	}
	if fields["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", fields["error"])
	}
}

func TestSetLevelString(t *testing.T) {
	defer SetLevel(zapcore.InfoLevel)

	for in, want := range map[string]zapcore.Level{
		"debug": zapcore.DebugLevel, "WARN": zapcore.WarnLevel, "warning": zapcore.WarnLevel,
		"error": zapcore.ErrorLevel, "": zapcore.InfoLevel,
	} {
		if err := SetLevelString(in); err != nil {
			t.Fatalf("SetLevelString(%q): %v", in, err)
		}
		if Level() != want {
			t.Errorf("SetLevelString(%q): level %v, want %v", in, Level(), want)
		}
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Debug(context.Background(), "discarded")
	if l.Named("x") == nil {
		t.Fatal("named nop logger is nil")
	}
}
