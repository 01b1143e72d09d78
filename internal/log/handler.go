package log

import (
	"context"
	"io"
	"log/slog"
)

// jurisdictionKey is the context key carrying the jurisdiction identifier.
// An unexported struct type prevents collisions with keys from other
// packages.
type jurisdictionKey struct{}

// AttrKey is the attribute key under which the jurisdiction appears in
// log records.
const AttrKey = "jurisdiction"

// WithJurisdiction returns a context carrying the jurisdiction identifier.
// Records logged with this context through a JurisdictionHandler are stamped
// with the identifier automatically.
func WithJurisdiction(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jurisdictionKey{}, id)
}

// JurisdictionFromContext extracts the jurisdiction identifier from the
// context, or "" when none is set.
func JurisdictionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(jurisdictionKey{}).(string)
	return id
}

// JurisdictionHandler wraps an slog.Handler and stamps each record with the
// jurisdiction carried in the logging context.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites keep using plain slog methods with a context
type JurisdictionHandler struct {
	// handler is the underlying slog handler that receives stamped records.
	handler slog.Handler
}

// NewJurisdictionHandler creates a new JurisdictionHandler wrapping the
// given handler. If handler is nil, the returned handler wraps
// slog.Default().Handler().
func NewJurisdictionHandler(handler slog.Handler) *JurisdictionHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &JurisdictionHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *JurisdictionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle stamps the record with the jurisdiction from the context, if any,
// and passes it to the underlying handler.
func (h *JurisdictionHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := JurisdictionFromContext(ctx); id != "" {
		r = r.Clone()
		r.AddAttrs(slog.String(AttrKey, id))
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *JurisdictionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &JurisdictionHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *JurisdictionHandler) WithGroup(name string) slog.Handler {
	return &JurisdictionHandler{handler: h.handler.WithGroup(name)}
}

// New creates a structured logger writing to w.
// When verbose is true the level drops to Debug; otherwise Info and above
// are logged.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	base := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewJurisdictionHandler(base))
}
