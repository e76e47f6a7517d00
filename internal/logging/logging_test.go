package logging

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		" warn ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.WarnLevel,
		"verbose": zerolog.WarnLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerWithConfig_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithConfig(LogConfig{Level: "info", Console: true, ConsoleOut: &buf})

	LogEvaluation(WithSymbol(logger, "AAPL"), "AAPL", "Long Call", 190, 3.2, 189.5)
	logger.Debug().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, "Strategy evaluated") {
		t.Errorf("expected evaluation log, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be filtered at info level")
	}
}

func TestNewLoggerWithConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "optviz.log")
	logger := NewLoggerWithConfig(LogConfig{Level: "debug", File: true, FilePath: path, MaxSize: 1})

	LogAPICall(logger, "GET", "/v7/finance/options/AAPL", 15*time.Millisecond, errors.New("boom"))
	if got := logger.GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}
}

func TestContextLogger(t *testing.T) {
	if FromContext(context.Background()).GetLevel() != zerolog.Disabled {
		t.Errorf("missing logger should be a no-op logger")
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := WithLogger(context.Background(), logger)
	scoped := WithOperation(FromContext(ctx), "analyze")
	scoped.Info().Msg("hello")
	if !strings.Contains(buf.String(), `"operation":"analyze"`) {
		t.Errorf("expected operation field, got %q", buf.String())
	}
}
