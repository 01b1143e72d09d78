package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// TestJurisdictionHandler tests jurisdiction stamping from context.
func TestJurisdictionHandler(t *testing.T) {
	t.Parallel()

	t.Run("stamps jurisdiction from context", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(&buf, false)

		ctx := WithJurisdiction(context.Background(), "MT")
		logger.InfoContext(ctx, "section complete", "section", "Title 1")

		out := buf.String()
		if !strings.Contains(out, "jurisdiction=MT") {
			t.Errorf("expected jurisdiction attribute, got %q", out)
		}
		if !strings.Contains(out, "section complete") {
			t.Errorf("expected message, got %q", out)
		}
	})

	t.Run("no stamp without context value", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(&buf, false)

		logger.InfoContext(context.Background(), "starting")

		if strings.Contains(buf.String(), "jurisdiction=") {
			t.Errorf("unexpected jurisdiction attribute: %q", buf.String())
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(&buf, true)

		logger.Debug("visited", "url", "https://x/")

		if !strings.Contains(buf.String(), "visited") {
			t.Errorf("expected debug record in verbose mode, got %q", buf.String())
		}
	})

	t.Run("quiet suppresses debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(&buf, false)

		logger.Debug("visited")

		if buf.Len() != 0 {
			t.Errorf("expected no debug output, got %q", buf.String())
		}
	})

	t.Run("WithGroup keeps stamping", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		base := slog.NewTextHandler(&buf, nil)
		logger := slog.New(NewJurisdictionHandler(base).WithGroup("crawl"))

		ctx := WithJurisdiction(context.Background(), "VT")
		logger.InfoContext(ctx, "done", "records", 3)

		if !strings.Contains(buf.String(), "jurisdiction=VT") {
			t.Errorf("expected jurisdiction attribute, got %q", buf.String())
		}
	})
}

// TestJurisdictionFromContext tests the context accessor.
func TestJurisdictionFromContext(t *testing.T) {
	t.Parallel()

	if got := JurisdictionFromContext(context.Background()); got != "" {
		t.Errorf("expected empty jurisdiction, got %q", got)
	}

	ctx := WithJurisdiction(context.Background(), "AK")
	if got := JurisdictionFromContext(ctx); got != "AK" {
		t.Errorf("expected AK, got %q", got)
	}
}
