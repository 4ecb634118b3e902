package errors

import (
	"sync"
	"time"
)

const (
	ErrorThreshold      = 0.5
	MinRequests         = 10
	TimeoutDuration     = 30 * time.Second
	HalfOpenMaxRequests = 3
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerSettings tunes a CircuitBreaker. Zero values take the package defaults.
type BreakerSettings struct {
	ErrorThreshold      float64
	MinRequests         int
	OpenTimeout         time.Duration
	HalfOpenMaxRequests int
	// OnStateChange is called with the breaker lock held; it must not call back into the breaker.
	OnStateChange func(name string, from, to State)
}

// CircuitBreaker stops calling a failing dependency for a while once its
// error rate crosses the threshold.
type CircuitBreaker struct {
	name     string
	settings BreakerSettings

	mu              sync.Mutex
	state           State
	failures        int
	successes       int
	requests        int
	lastFailureTime time.Time
	now             func() time.Time
}

func NewCircuitBreaker(name string, settings BreakerSettings) *CircuitBreaker {
	if settings.ErrorThreshold <= 0 {
		settings.ErrorThreshold = ErrorThreshold
	}
	if settings.MinRequests <= 0 {
		settings.MinRequests = MinRequests
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = TimeoutDuration
	}
	if settings.HalfOpenMaxRequests <= 0 {
		settings.HalfOpenMaxRequests = HalfOpenMaxRequests
	}

	return &CircuitBreaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
		now:      time.Now,
	}
}

// Call runs fn unless the breaker is open. Rejected calls return a retryable
// external API error naming the breaker.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if fn == nil {
		return nil
	}

	cb.mu.Lock()
	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastFailureTime) >= cb.settings.OpenTimeout {
			cb.setStateLocked(StateHalfOpen)
		} else {
			cb.mu.Unlock()
			return cb.rejection()
		}
	}

	if cb.state == StateHalfOpen && cb.requests >= cb.settings.HalfOpenMaxRequests {
		cb.mu.Unlock()
		return cb.rejection()
	}
	cb.mu.Unlock()

	callErr := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.requests++
	if callErr != nil {
		cb.failures++

		if cb.state == StateHalfOpen {
			cb.tripToOpenLocked()
		} else {
			cb.evaluateStateLocked()
		}

		return callErr
	}

	cb.successes++
	if cb.state == StateHalfOpen && cb.successes >= cb.settings.HalfOpenMaxRequests {
		cb.setStateLocked(StateClosed)
	}

	return nil
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) rejection() error {
	e := NewExternalAPIError(cb.name, nil)
	e.Message = "circuit breaker " + cb.name + " is open"
	e.Retryable = false
	return e
}

func (cb *CircuitBreaker) evaluateStateLocked() {
	if cb.requests < cb.settings.MinRequests {
		return
	}

	errorRate := float64(cb.failures) / float64(cb.requests)
	if errorRate >= cb.settings.ErrorThreshold {
		cb.tripToOpenLocked()
	}
}

func (cb *CircuitBreaker) tripToOpenLocked() {
	cb.lastFailureTime = cb.now()
	cb.setStateLocked(StateOpen)
}

func (cb *CircuitBreaker) setStateLocked(to State) {
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.successes = 0
	cb.requests = 0

	if from != to && cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.name, from, to)
	}
}
