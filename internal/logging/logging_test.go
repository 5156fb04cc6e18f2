package logging

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatalf("expected the attached logger back, got %v", got)
	}
}

func TestFromContextWithoutLogger(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("expected nil for a bare context, got %v", got)
	}
}

func TestContextWithNilLoggerIsNoOp(t *testing.T) {
	ctx := ContextWithLogger(context.Background(), nil)
	if got := FromContext(ctx); got != nil {
		t.Fatalf("expected no logger to be attached, got %v", got)
	}
}

func TestLevelMapping(t *testing.T) {
	cases := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := Level(tc.name); got != tc.want {
			t.Errorf("Level(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
