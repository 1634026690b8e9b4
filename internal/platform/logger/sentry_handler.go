package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// SentryHandler manda a Sentry los records ERROR o superiores.
// Los attrs del record (y los acumulados con With) viajan como Extra.
type SentryHandler struct {
	hub   *sentry.Hub
	attrs []slog.Attr
}

// NewSentryHandler usa hub o, si es nil, el hub global inicializado por sentry.Init.
func NewSentryHandler(hub *sentry.Hub) *SentryHandler {
	return &SentryHandler{hub: hub}
}

func (h *SentryHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *SentryHandler) Handle(_ context.Context, record slog.Record) error {
	hub := h.hub
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	event := sentry.NewEvent()
	event.Level = sentry.LevelError
	event.Logger = "slog"
	event.Message = record.Message
	event.Timestamp = record.Time
	if event.Extra == nil {
		event.Extra = map[string]any{}
	}

	for _, a := range h.attrs {
		event.Extra[a.Key] = a.Value.Any()
	}
	record.Attrs(func(a slog.Attr) bool {
		event.Extra[a.Key] = a.Value.Any()
		return true
	})
	if app, ok := event.Extra["app"].(string); ok {
		event.Tags = map[string]string{"app": app}
	}

	hub.CaptureEvent(event)
	return nil
}

func (h *SentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &SentryHandler{hub: h.hub, attrs: merged}
}

// Sentry no tiene noción de grupos; se ignoran.
func (h *SentryHandler) WithGroup(string) slog.Handler {
	return h
}
