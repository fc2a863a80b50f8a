package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing() error { return errBoom }
func succeeding() error { return nil }

func TestExecute_PassesThroughWhenClosed(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig())

	assert.NoError(t, cb.Execute(succeeding))
	assert.ErrorIs(t, cb.Execute(failing), errBoom)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestExecute_OpensAfterThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 3
	cb := NewCircuitBreaker(cfg)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(failing), errBoom)
	}

	err := cb.Execute(succeeding)
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestExecute_SuccessResetsFailureCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 3
	cb := NewCircuitBreaker(cfg)

	assert.Error(t, cb.Execute(failing))
	assert.Error(t, cb.Execute(failing))
	assert.NoError(t, cb.Execute(succeeding))

	// Two more failures stay under the threshold again.
	assert.ErrorIs(t, cb.Execute(failing), errBoom)
	assert.ErrorIs(t, cb.Execute(failing), errBoom)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestExecute_HalfOpenProbesAndCloses(t *testing.T) {
	cfg := Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		Timeout:             10 * time.Millisecond,
		HalfOpenMaxRequests: 3,
	}
	cb := NewCircuitBreaker(cfg)

	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(failing))
	require.ErrorIs(t, cb.Execute(succeeding), ErrCircuitBreakerOpen)

	time.Sleep(15 * time.Millisecond)

	assert.NoError(t, cb.Execute(succeeding))
	assert.NoError(t, cb.Execute(succeeding))
	assert.NoError(t, cb.Execute(succeeding))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestExecute_HalfOpenFailureReopens(t *testing.T) {
	cfg := Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		Timeout:             10 * time.Millisecond,
		HalfOpenMaxRequests: 3,
	}
	cb := NewCircuitBreaker(cfg)

	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(failing))
	time.Sleep(15 * time.Millisecond)

	assert.ErrorIs(t, cb.Execute(failing), errBoom)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestReset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 1
	cb := NewCircuitBreaker(cfg)

	require.Error(t, cb.Execute(failing))
	require.ErrorIs(t, cb.Execute(succeeding), ErrCircuitBreakerOpen)

	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.NoError(t, cb.Execute(succeeding))
}
