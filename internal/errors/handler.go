package errors

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/lanxat-bot/pkg/logger"
	"github.com/Proton-105/lanxat-bot/pkg/metrics"
)

type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
	}
}

// Handle logs err and returns the message to show the user and whether the
// operation may be retried.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}

	if ctx == nil {
		ctx = context.Background()
	}

	log := h.log
	if log == nil {
		log = slog.Default()
	}

	if domainErr, ok := AsDomain(err); ok {
		attrs := []slog.Attr{
			slog.String("code", domainErr.Code),
			slog.String("message", err.Error()),
			slog.String("severity", string(domainErr.Severity)),
			slog.Bool("retryable", domainErr.Retryable),
		}

		if cause := domainErr.Unwrap(); cause != nil {
			attrs = append(attrs, slog.String("cause", cause.Error()))
		}

		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			attrs = append(attrs, slog.String("correlation_id", correlationID))
		}

		level := slog.LevelWarn
		if domainErr.Severity == SeverityHigh || domainErr.Severity == SeverityCritical {
			level = slog.LevelError
		}

		log.LogAttrs(ctx, level, "domain error", attrs...)
		metrics.RecordError(domainErr.Code, string(domainErr.Severity))

		if h.sentryEnabled && (domainErr.Severity == SeverityCritical || domainErr.Severity == SeverityHigh) {
			h.sendToSentry(err)
		}

		userMessage := domainErr.UserMessage
		if userMessage == "" {
			userMessage = genericUserMessage
		}

		return userMessage, domainErr.Retryable
	}

	attrs := []slog.Attr{
		slog.String("message", err.Error()),
		slog.String("severity", string(SeverityHigh)),
		slog.Bool("retryable", false),
	}

	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	log.Error("unknown error", attrsToArgs(attrs)...)
	metrics.RecordError("unknown", string(SeverityHigh))

	if h.sentryEnabled {
		h.sendToSentry(err)
	}

	return genericUserMessage, false
}

func (h *Handler) sendToSentry(err error) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if domainErr, ok := AsDomain(err); ok {
			if domainErr.Code != "" {
				scope.SetTag("code", domainErr.Code)
			}

			if domainErr.Severity != "" {
				scope.SetTag("severity", string(domainErr.Severity))
			}
		}

		sentry.CaptureException(err)
	})
}

func attrsToArgs(attrs []slog.Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}

	return args
}
