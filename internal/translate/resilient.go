package translate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/Proton-105/lanxat-bot/internal/errors"
	"github.com/Proton-105/lanxat-bot/pkg/metrics"
)

// Resilient guards a backend with a circuit breaker and retries, and times
// every call.
type Resilient struct {
	next    Translator
	breaker *errors.CircuitBreaker
	log     *slog.Logger
}

var _ Translator = (*Resilient)(nil)

func NewResilient(next Translator, log *slog.Logger) *Resilient {
	if log == nil {
		log = slog.Default()
	}

	name := strings.ToLower(next.Name())
	breaker := errors.NewCircuitBreaker(name, errors.BreakerSettings{
		OnStateChange: func(name string, from, to errors.State) {
			metrics.SetCircuitBreakerState(name, int(to))
			log.Warn("translator circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	metrics.SetCircuitBreakerState(name, int(errors.StateClosed))

	return &Resilient{next: next, breaker: breaker, log: log}
}

func (r *Resilient) Name() string {
	return r.next.Name()
}

func (r *Resilient) Translate(ctx context.Context, req Request) (*Result, error) {
	var result *Result
	err := r.call(ctx, "translate", func() error {
		var err error
		result, err = r.next.Translate(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Resilient) Detect(ctx context.Context, text string, hints []string, apiKey string) (string, error) {
	var lang string
	err := r.call(ctx, "detect", func() error {
		var err error
		lang, err = r.next.Detect(ctx, text, hints, apiKey)
		return err
	})
	return lang, err
}

// call retries fn through the breaker. Client errors such as a bad API key do
// not count against the breaker.
func (r *Resilient) call(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()

	err := errors.WithRetry(ctx, func() error {
		var callErr error
		breakerErr := r.breaker.Call(func() error {
			callErr = fn()
			if callErr != nil && !errors.IsRetryable(callErr) {
				return nil
			}
			return callErr
		})
		if callErr != nil {
			return callErr
		}
		return breakerErr
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordTranslation(strings.ToLower(r.next.Name()), operation, status, time.Since(start))

	return err
}
