package errors

import (
	stdErrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	now := time.Now()
	var transitions []State

	cb := NewCircuitBreaker("yandex", BreakerSettings{
		MinRequests:         4,
		OpenTimeout:         time.Minute,
		HalfOpenMaxRequests: 2,
		OnStateChange: func(_ string, _, to State) {
			transitions = append(transitions, to)
		},
	})
	cb.now = func() time.Time { return now }

	failure := stdErrors.New("boom")
	for i := 0; i < 4; i++ {
		assert.Equal(t, failure, cb.Call(func() error { return failure }))
	}
	require.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, IsDomain(err))
	assert.False(t, IsRetryable(err))

	now = now.Add(2 * time.Minute)
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker("gemini", BreakerSettings{MinRequests: 1, OpenTimeout: time.Second})
	cb.now = func() time.Time { return now }

	_ = cb.Call(func() error { return stdErrors.New("x") })
	require.Equal(t, StateOpen, cb.State())

	now = now.Add(2 * time.Second)
	_ = cb.Call(func() error { return stdErrors.New("y") })
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, "open", cb.State().String())
}
