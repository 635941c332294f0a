package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestMetricsPath(t *testing.T) {
	cases := map[string]string{
		"logs/traces.log":  "logs/traces.metrics.log",
		"traces":           "traces.metrics",
		"logs.d/traces":    "logs.d/traces.metrics",
		"/var/log/otel.jl": "/var/log/otel.metrics.jl",
	}
	for in, want := range cases {
		if got := metricsPath(in); got != want {
			t.Fatalf("metricsPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInit_DisabledWithoutFile(t *testing.T) {
	shutdown, err := Init(context.Background(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown failed: %v", err)
	}
}

func TestInit_WritesToFiles(t *testing.T) {
	dir := t.TempDir()
	traceFile := filepath.Join(dir, "traces.log")

	shutdown, err := Init(context.Background(), traceFile)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "unit")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	raw, err := os.ReadFile(traceFile)
	if err != nil {
		t.Fatalf("expected trace file: %v", err)
	}
	if !strings.Contains(string(raw), `"unit"`) {
		t.Fatalf("expected span exported, got %s", raw)
	}
}

func TestNewLogger_WithFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	logger, err := NewLogger(logFile)
	if err != nil {
		t.Fatalf("logger failed: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	raw, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected log line written to file")
	}
}
