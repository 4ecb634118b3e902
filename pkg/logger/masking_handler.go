package logger

import (
	"context"
	"log/slog"
	"strings"
)

const maskedValue = "***"

var sensitiveKeys = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"apikey",
	"yandex_api_key",
	"gemini_api_key",
	"authorization",
	"dsn",
}

// MaskingHandler wraps a slog.Handler and masks sensitive attributes before delegating.
type MaskingHandler struct {
	next slog.Handler
}

func NewMaskingHandler(next slog.Handler) *MaskingHandler {
	return &MaskingHandler{next: next}
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = maskAttr(attr)
	}
	return &MaskingHandler{next: h.next.WithAttrs(masked)}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name)}
}

func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(maskAttr(attr))
		return true
	})

	return h.next.Handle(ctx, masked)
}

func maskAttr(attr slog.Attr) slog.Attr {
	if isSensitiveKey(attr.Key) {
		return slog.String(attr.Key, maskedValue)
	}

	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		masked := make([]any, 0, len(group))
		for _, child := range group {
			masked = append(masked, maskAttr(child))
		}
		return slog.Group(attr.Key, masked...)
	}

	return attr
}

func isSensitiveKey(key string) bool {
	for _, sensitive := range sensitiveKeys {
		if strings.EqualFold(key, sensitive) {
			return true
		}
	}
	return false
}
