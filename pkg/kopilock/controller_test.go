package kopilock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollLoop_AcquiresOnFirstTry(t *testing.T) {
	scope := CacheWriterScope()
	budget := NewBudget(Finite(time.Second), ProvenanceDefault)
	req := NewRequest(scope, budget, NewToken())

	released := false
	acq, err := pollLoop(scope, req, BackendFallback, func() (bool, func() error, error) {
		return true, func() error { released = true; return nil }, nil
	})
	require.NoError(t, err)
	require.NotNil(t, acq)
	require.NoError(t, acq.Release())
	assert.True(t, released)
}

func TestPollLoop_ImmediateModeFailsWithoutRetrying(t *testing.T) {
	scope := CacheWriterScope()
	budget := NewBudget(Finite(0), ProvenanceDefault)
	obs := &recordingObserver{}
	req := NewRequest(scope, budget, NewToken(), WithObserver(obs))

	attempts := 0
	_, err := pollLoop(scope, req, BackendFallback, func() (bool, func() error, error) {
		attempts++
		return false, nil, nil
	})
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, obs.timeouts, "immediate-mode timeout must still fire OnTimeout")
}

// recordingObserver counts WaitObserver callback invocations for tests that
// need to assert exactly one terminal event fired.
type recordingObserver struct {
	timeouts int
}

func (o *recordingObserver) OnWaitStart(Scope, Budget)                        {}
func (o *recordingObserver) OnRetry(Scope, time.Duration, time.Duration, bool) {}
func (o *recordingObserver) OnAcquired(Scope, time.Duration, Backend)          {}
func (o *recordingObserver) OnTimeout(Scope, time.Duration)                    { o.timeouts++ }
func (o *recordingObserver) OnCancelled(Scope, time.Duration)                  {}

var _ WaitObserver = (*recordingObserver)(nil)

func TestPollLoop_RetriesThenAcquires(t *testing.T) {
	scope := CacheWriterScope()
	budget := NewBudget(Finite(time.Second), ProvenanceDefault)
	backoff := NewBackoffWith(time.Millisecond, 1.5, 10*time.Millisecond)
	req := NewRequest(scope, budget, NewToken(), WithBackoff(backoff))

	attempts := 0
	acq, err := pollLoop(scope, req, BackendAdvisory, func() (bool, func() error, error) {
		attempts++
		if attempts < 3 {
			return false, nil, nil
		}
		return true, func() error { return nil }, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, BackendAdvisory, acq.Backend())
}

func TestPollLoop_TimesOut(t *testing.T) {
	scope := CacheWriterScope()
	budget := NewBudget(Finite(20*time.Millisecond), ProvenanceDefault)
	backoff := NewBackoffWith(5*time.Millisecond, 1.0, 5*time.Millisecond)
	req := NewRequest(scope, budget, NewToken(), WithBackoff(backoff))

	_, err := pollLoop(scope, req, BackendFallback, func() (bool, func() error, error) {
		return false, nil, nil
	})
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}

func TestPollLoop_CancellationStopsTheWait(t *testing.T) {
	scope := CacheWriterScope()
	budget := NewBudget(Infinite, ProvenanceDefault)
	tok := NewToken()
	tok.Cancel()
	req := NewRequest(scope, budget, tok)

	_, err := pollLoop(scope, req, BackendFallback, func() (bool, func() error, error) {
		return false, nil, nil
	})
	var cancelledErr *CancelledError
	require.ErrorAs(t, err, &cancelledErr)
}

func TestPollLoop_HardFailureAbortsImmediately(t *testing.T) {
	scope := CacheWriterScope()
	budget := NewBudget(Finite(time.Second), ProvenanceDefault)
	req := NewRequest(scope, budget, NewToken())

	attempts := 0
	_, err := pollLoop(scope, req, BackendFallback, func() (bool, func() error, error) {
		attempts++
		return false, nil, assert.AnError
	})
	var acquireErr *AcquireError
	require.ErrorAs(t, err, &acquireErr)
	assert.Equal(t, 1, attempts)
}
