package webhook_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/alertkit/pkg/webhook"
)

type transition struct {
	from, to webhook.CircuitState
}

func TestCircuitBreaker_StateTransitions(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var seen []transition
	cb := webhook.NewCircuitBreaker("fcm",
		webhook.WithFailureThreshold(2),
		webhook.WithSuccessThreshold(2),
		webhook.WithRecoveryTimeout(30*time.Millisecond),
		webhook.WithStateChangeHook(func(name string, from, to webhook.CircuitState) {
			assert.Equal(t, "fcm", name)
			mu.Lock()
			seen = append(seen, transition{from, to})
			mu.Unlock()
		}),
	)
	assert.Equal(t, "fcm", cb.Name())

	assert.True(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, webhook.CircuitClosed, cb.State())
	cb.RecordFailure()
	assert.Equal(t, webhook.CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	time.Sleep(40 * time.Millisecond)
	assert.True(t, cb.Allow())
	assert.Equal(t, webhook.CircuitHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, webhook.CircuitHalfOpen, cb.State())
	cb.RecordSuccess()
	assert.Equal(t, webhook.CircuitClosed, cb.State())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []transition{
		{webhook.CircuitClosed, webhook.CircuitOpen},
		{webhook.CircuitOpen, webhook.CircuitHalfOpen},
		{webhook.CircuitHalfOpen, webhook.CircuitClosed},
	}, seen)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	cb := webhook.NewCircuitBreaker("msg91", webhook.WithFailureThreshold(1), webhook.WithRecoveryTimeout(20*time.Millisecond))
	cb.RecordFailure()
	time.Sleep(30 * time.Millisecond)
	assert.True(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, webhook.CircuitOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	t.Parallel()

	cb := webhook.NewCircuitBreaker("x", webhook.WithFailureThreshold(2))
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	assert.Equal(t, webhook.CircuitClosed, cb.State())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	t.Parallel()

	cb := webhook.NewCircuitBreaker("x", webhook.WithFailureThreshold(1))
	cb.RecordFailure()
	assert.Equal(t, webhook.CircuitOpen, cb.State())

	cb.Reset()
	assert.Equal(t, webhook.CircuitClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_Defaults(t *testing.T) {
	t.Parallel()

	cb := webhook.NewCircuitBreaker("x", webhook.WithFailureThreshold(0))
	for range 4 {
		cb.RecordFailure()
	}
	assert.Equal(t, webhook.CircuitClosed, cb.State())
	cb.RecordFailure()
	assert.Equal(t, webhook.CircuitOpen, cb.State())
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cb := webhook.NewCircuitBreaker("x", webhook.WithFailureThreshold(1000))
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cb.Allow()
			if i%2 == 0 {
				cb.RecordFailure()
			} else {
				cb.RecordSuccess()
			}
			_ = cb.State()
		}()
	}
	wg.Wait()
	assert.Equal(t, webhook.CircuitClosed, cb.State())
}
