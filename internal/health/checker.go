// Package health reports whether the bot's dependencies are reachable.
package health

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/telebot.v3"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	defaultCheckTimeout = 3 * time.Second
)

// Checkable represents a component that can report its health status.
// *mongodb.Client implements it directly.
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// CheckFunc adapts a function to Checkable.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// Report is the outcome of one Check run.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Healthy reports whether every component answered.
func (r Report) Healthy() bool {
	return r.Status == StatusOK
}

// Checker aggregates health checks for multiple components.
type Checker struct {
	log     *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]Checkable
}

// NewChecker instantiates a Checker with the provided logger.
func NewChecker(log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}

	return &Checker{
		log:     log,
		timeout: defaultCheckTimeout,
		checks:  make(map[string]Checkable),
	}
}

// AddCheck registers a checkable component by name.
func (c *Checker) AddCheck(name string, check Checkable) {
	if name == "" || check == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Names lists the registered components in order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs all registered health checks concurrently, each bounded by the
// checker timeout.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]Checkable, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	report := Report{Status: StatusOK, Checks: make(map[string]string, len(checks))}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			status := StatusOK
			if err := check.HealthCheck(checkCtx); err != nil {
				status = err.Error()
				c.log.Error("health check failed", slog.String("component", name), slog.Any("error", err))
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = status
			if status != StatusOK {
				report.Status = StatusDegraded
			}
		}()
	}

	wg.Wait()
	return report
}

// Pinger abstracts the subset of redis.Client used for health checks.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisChecker verifies connectivity to a Redis instance.
type RedisChecker struct {
	pinger Pinger
}

func NewRedisChecker(pinger Pinger) *RedisChecker {
	return &RedisChecker{pinger: pinger}
}

// HealthCheck issues a PING command against Redis.
func (c *RedisChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.pinger == nil {
		return redis.ErrClosed
	}
	return c.pinger.Ping(ctx).Err()
}

// TelegramChecker verifies that the bot authenticated against the Bot API.
type TelegramChecker struct {
	bot *telebot.Bot
}

func NewTelegramChecker(bot *telebot.Bot) *TelegramChecker {
	return &TelegramChecker{bot: bot}
}

// HealthCheck ensures the underlying bot is initialized.
func (c *TelegramChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.bot == nil || c.bot.Me == nil {
		return errors.New("telegram bot is not initialized")
	}
	return nil
}
