package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Shutdown runs shutdown hooks in reverse registration order, so components
// started last stop first.
type Shutdown struct {
	mu       sync.Mutex
	hooks    []Hook
	draining bool
	log      *slog.Logger
}

// NewShutdown constructs a new Shutdown coordinator.
func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log}
}

// Register adds a named shutdown hook.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	s.RegisterWithTimeout(name, 0, fn)
}

// RegisterWithTimeout adds a hook that gets at most timeout to finish.
func (s *Shutdown) RegisterWithTimeout(name string, timeout time.Duration, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, Hook{Name: name, Fn: fn, Timeout: timeout})
}

// Draining reports whether Execute has started.
func (s *Shutdown) Draining() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draining
}

// Execute runs every hook once, one after another, even when earlier hooks
// fail. The errors of all failed hooks are joined.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	s.draining = true
	hooks := append([]Hook(nil), s.hooks...)
	s.hooks = nil
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hook_count", len(hooks)))

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := s.run(ctx, hooks[i]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hooks[i].Name, err))
		}
	}

	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	return errors.Join(errs...)
}

func (s *Shutdown) run(ctx context.Context, h Hook) error {
	hookCtx, cancel := context.WithCancel(ctx)
	if h.Timeout > 0 {
		hookCtx, cancel = context.WithTimeout(ctx, h.Timeout)
	}
	defer cancel()

	s.log.Info("running shutdown hook", slog.String("hook", h.Name))

	if err := h.Fn(hookCtx); err != nil {
		s.log.Error("shutdown hook failed", slog.String("hook", h.Name), slog.Any("error", err))
		return err
	}

	s.log.Info("shutdown hook completed", slog.String("hook", h.Name))
	return nil
}
