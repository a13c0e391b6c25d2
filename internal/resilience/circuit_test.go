package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreaker(threshold int, reset time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: threshold,
		ResetTimeout:     reset,
	})
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	cb := testBreaker(3, time.Minute)
	fail := func(context.Context) error { return eris.New("down") }

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), fail)
	}
	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Execute(context.Background(), fail)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	t.Parallel()

	cb := testBreaker(3, time.Minute)

	_ = cb.Execute(context.Background(), func(context.Context) error { return eris.New("down") })
	_ = cb.Execute(context.Background(), func(context.Context) error { return eris.New("down") })
	require.NoError(t, cb.Execute(context.Background(), func(context.Context) error { return nil }))

	// Two more failures should not trip a threshold of three.
	_ = cb.Execute(context.Background(), func(context.Context) error { return eris.New("down") })
	_ = cb.Execute(context.Background(), func(context.Context) error { return eris.New("down") })
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	t.Parallel()

	cb := testBreaker(1, time.Minute)
	_ = cb.Execute(context.Background(), func(context.Context) error { return eris.New("down") })
	require.Equal(t, CircuitOpen, cb.State())

	// Advance past the reset timeout.
	cb.nowFunc = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// Successful probe closes the circuit.
	require.NoError(t, cb.Execute(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestExecuteVal_PreservesValue(t *testing.T) {
	t.Parallel()

	cb := testBreaker(1, time.Minute)
	val, err := ExecuteVal(context.Background(), cb, func(context.Context) (string, error) {
		return "page body", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "page body", val)
}

func TestHostBreakers_IsolatesHosts(t *testing.T) {
	t.Parallel()

	hb := NewHostBreakers(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})

	_ = hb.Get("www.amazon.eg").Execute(context.Background(), func(context.Context) error {
		return eris.New("down")
	})

	assert.Equal(t, CircuitOpen, hb.Get("www.amazon.eg").State())
	assert.Equal(t, CircuitClosed, hb.Get("www.jumia.com.eg").State())

	states := hb.States()
	assert.Len(t, states, 2)
}
