package lifecycle

import (
	"context"
	"errors"

	"github.com/Proton-105/lanxat-bot/internal/health"
)

// ErrShuttingDown is reported by Readiness once shutdown has begun.
var ErrShuttingDown = errors.New("shutting down")

// Probes combines the dependency checks with the shutdown state.
type Probes struct {
	checker  *health.Checker
	shutdown *Shutdown
}

func NewProbes(checker *health.Checker, shutdown *Shutdown) *Probes {
	return &Probes{checker: checker, shutdown: shutdown}
}

// Liveness always succeeds while the process can serve HTTP.
func (p *Probes) Liveness(context.Context) error {
	return nil
}

// Readiness runs the dependency checks. A draining process is never ready.
func (p *Probes) Readiness(ctx context.Context) (health.Report, error) {
	if p.shutdown != nil && p.shutdown.Draining() {
		return health.Report{Status: health.StatusDegraded, Checks: map[string]string{}}, ErrShuttingDown
	}

	if p.checker == nil {
		return health.Report{Status: health.StatusOK, Checks: map[string]string{}}, nil
	}

	report := p.checker.Check(ctx)
	if !report.Healthy() {
		return report, errors.New("dependencies unavailable")
	}
	return report, nil
}
