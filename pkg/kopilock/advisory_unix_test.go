//go:build unix

package kopilock

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAdvisory_ExclusiveAndContends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")
	scope := CacheWriterScope()

	budget := NewBudget(Finite(time.Second), ProvenanceDefault)
	req1 := NewRequest(scope, budget, NewToken())
	acq1, err := acquireAdvisory(path, req1)
	require.NoError(t, err)
	require.NotNil(t, acq1)

	contendBudget := NewBudget(Finite(0), ProvenanceDefault)
	req2 := NewRequest(scope, contendBudget, NewToken())
	_, err = acquireAdvisory(path, req2)
	var timeoutErr *TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)

	require.NoError(t, acq1.Release())

	req3 := NewRequest(scope, NewBudget(Finite(time.Second), ProvenanceDefault), NewToken())
	acq3, err := acquireAdvisory(path, req3)
	require.NoError(t, err)
	require.NoError(t, acq3.Release())
}
