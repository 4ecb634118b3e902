package lifecycle

import (
	"context"
	"time"
)

// Hook describes a named shutdown hook.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
	// Timeout bounds the hook; zero uses the shutdown context alone.
	Timeout time.Duration
}
