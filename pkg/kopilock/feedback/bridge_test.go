package feedback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

type recordingIndicator struct {
	starts, updates, finishes []string
}

func (r *recordingIndicator) Start(m string)  { r.starts = append(r.starts, m) }
func (r *recordingIndicator) Update(m string) { r.updates = append(r.updates, m) }
func (r *recordingIndicator) Finish(m string) { r.finishes = append(r.finishes, m) }

func TestBridge_LifecycleDelegatesToIndicator(t *testing.T) {
	ind := &recordingIndicator{}
	b := NewBridge(ind)
	scope := kopilock.CacheWriterScope()
	budget := kopilock.NewBudget(kopilock.Finite(time.Minute), kopilock.ProvenanceCLI)

	b.OnWaitStart(scope, budget)
	assert.Len(t, ind.starts, 1)

	b.OnAcquired(scope, time.Second, kopilock.BackendAdvisory)
	assert.Len(t, ind.finishes, 1)
	assert.Contains(t, ind.finishes[0], "acquired")
}

func TestBridge_RetryIsRateLimited(t *testing.T) {
	ind := &recordingIndicator{}
	b := NewBridge(ind)
	scope := kopilock.CacheWriterScope()

	b.OnRetry(scope, time.Second, time.Second, true)
	b.OnRetry(scope, 2*time.Second, 0, true)
	assert.Len(t, ind.updates, 1)
}

func TestBridge_Timeout(t *testing.T) {
	ind := &recordingIndicator{}
	b := NewBridge(ind)
	scope := kopilock.CacheWriterScope()
	b.OnTimeout(scope, time.Second)
	assert.Len(t, ind.finishes, 1)
	assert.Contains(t, ind.finishes[0], "timed out")
}
