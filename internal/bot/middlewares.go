package bot

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lanxat-bot/internal/bot/handlers"
	"github.com/Proton-105/lanxat-bot/internal/bot/keyboard"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
	"github.com/Proton-105/lanxat-bot/internal/ratelimit"
	"github.com/Proton-105/lanxat-bot/pkg/logger"
	"github.com/Proton-105/lanxat-bot/pkg/metrics"
)

// QueryAnswerer answers an inline query outside of its update; *telebot.Bot
// implements it.
type QueryAnswerer interface {
	Answer(query *telebot.Query, resp *telebot.QueryResponse) error
}

// RecoveryMiddleware turns a handler panic into a reported error.
func RecoveryMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
					err = fmt.Errorf("panic recovered: %v", r)
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware reports handler errors and shows the user message
// where the update came from: an inline query gets an "Error" article, a
// button press an alert, anything else a chat message.
func ErrorHandlingMiddleware(errHandler *errors.Handler, answerer QueryAnswerer, errorTitle func(c telebot.Context) string) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg, _ := errHandler.Handle(handlers.RequestContext(c), err)

			var inlineErr *errors.InlineQueryError
			switch {
			case stdErrors.As(err, &inlineErr) && inlineErr.Query != nil && answerer != nil:
				return answerer.Answer(inlineErr.Query, handlers.InfoResponse(errorTitle(c), userMsg))
			case c.Query() != nil:
				return c.Answer(handlers.InfoResponse(errorTitle(c), userMsg))
			case c.Callback() != nil:
				return c.Respond(&telebot.CallbackResponse{Text: userMsg, ShowAlert: true})
			default:
				return c.Send(userMsg)
			}
		}
	}
}

// LoggingMiddleware attaches a correlation id to the update and logs it.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			start := time.Now()

			ctx := logger.WithCorrelationID(context.Background(), "")
			c.Set(handlers.ContextKey, ctx)

			attrs := []slog.Attr{
				slog.String("correlation_id", logger.CorrelationIDFromContext(ctx)),
				slog.String("action", actionName(c)),
			}
			if sender := c.Sender(); sender != nil {
				attrs = append(attrs, slog.Int64("user_id", sender.ID))
			}

			log.LogAttrs(ctx, slog.LevelDebug, "handling update", attrs...)
			err := next(c)

			attrs = append(attrs, slog.Duration("duration", time.Since(start)))
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			log.LogAttrs(ctx, slog.LevelInfo, "handled update", attrs...)

			return err
		}
	}
}

// MetricsMiddleware times every update by action.
func MetricsMiddleware(next handlers.Handler) handlers.Handler {
	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RecordCommand(actionName(c), status, time.Since(start))

		return err
	}
}

// RateLimitMiddleware counts inline queries and other updates per user
// against separate rules. Limiter failures let the update through.
func RateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if limiter == nil || !rules.Enabled() {
			return next
		}

		return func(c telebot.Context) error {
			sender := c.Sender()
			if sender == nil || rules.IsWhitelisted(sender.ID) {
				return next(c)
			}

			kind := ratelimit.KindPerUser
			if c.Query() != nil {
				kind = ratelimit.KindInline
			}

			rule, ok := rules.For(kind)
			if !ok {
				return next(c)
			}

			key := fmt.Sprintf("%s:%d", kind, sender.ID)
			result, err := limiter.Check(handlers.RequestContext(c), key, rule.Limit, rule.Window)
			switch {
			case stdErrors.Is(err, ratelimit.ErrLimitExceeded):
				log.Warn("rate limit exceeded", slog.Int64("user_id", sender.ID), slog.String("kind", string(kind)))
				retryAfter := 1
				if result != nil {
					retryAfter = max(int(math.Ceil(result.RetryAfter.Seconds())), 1)
				}
				return errors.NewRateLimitError(retryAfter)
			case err != nil:
				log.Warn("rate limiter error", slog.Int64("user_id", sender.ID), slog.Any("error", err))
			}

			return next(c)
		}
	}
}

// ProfileMiddleware loads or creates the sender's profile for chat updates.
// Inline queries are skipped: a user who never talked to the bot gets a hint
// instead of a profile.
func ProfileMiddleware(profiles handlers.ProfileService) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			sender := c.Sender()
			if profiles == nil || sender == nil || c.Query() != nil {
				return next(c)
			}

			profile, created, err := profiles.GetOrCreate(handlers.RequestContext(c), sender.ID, sender.LanguageCode)
			if err != nil {
				return err
			}

			c.Set(handlers.ProfileKey, profile)
			c.Set(handlers.ProfileCreatedKey, created)

			return next(c)
		}
	}
}

func actionName(c telebot.Context) string {
	switch {
	case c.Query() != nil:
		return "inline_query"
	case c.Callback() != nil:
		if cb := c.Callback(); cb.Data != "" {
			if action, _, err := keyboard.DecodeCallback(cb.Data); err == nil {
				return "callback:" + action
			}
		}
		return "callback"
	}

	if cmd, _, ok := ParseCommand(c.Text()); ok {
		return cmd
	}
	return "message"
}
