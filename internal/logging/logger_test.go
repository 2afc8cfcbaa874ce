package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"reelsort/internal/services"
)

func TestNewConsoleOrdersIdentityFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("recognized file",
		String("score", "4.5"),
		String(FieldFile, "movie.mkv"),
		String(FieldComponent, "recognizer"),
	)

	line := buf.String()
	componentIdx := strings.Index(line, "component=recognizer")
	fileIdx := strings.Index(line, "file=movie.mkv")
	scoreIdx := strings.Index(line, "score=4.5")
	if componentIdx == -1 || fileIdx == -1 || scoreIdx == -1 {
		t.Fatalf("missing attributes in line: %q", line)
	}
	if !(componentIdx < fileIdx && fileIdx < scoreIdx) {
		t.Fatalf("identity fields not front-ordered: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("probe", Int("n", 1))
	out := buf.String()
	if !strings.Contains(out, `"msg":"probe"`) || !strings.Contains(out, `"level":"debug"`) {
		t.Fatalf("unexpected JSON output: %q", out)
	}
}

func TestWithContextAddsBatchFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithBatchID(context.Background(), "b-123")
	ctx = services.WithFile(ctx, "show.s01e02.mkv")
	WithContext(ctx, logger).Info("processing")

	line := buf.String()
	if !strings.Contains(line, "batch_id=b-123") {
		t.Fatalf("expected batch_id in %q", line)
	}
	if !strings.Contains(line, "file=show.s01e02.mkv") {
		t.Fatalf("expected file in %q", line)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must stay silent.
	logger.Error("ignored", Error(nil))
}
