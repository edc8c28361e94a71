package feedback

import (
	"fmt"
	"os"
	"time"

	"k8s.io/klog/v2"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

// Bridge adapts kopilock.WaitObserver events to a ProgressIndicator,
// formatting the English, imperative, concise messages §4.8 specifies,
// and independently rate-limiting OnRetry to ≤1Hz (the Bridge's own
// throttle) on top of whatever cadence the indicator itself enforces —
// Interactive's terminal already redraws at any rate, so the Bridge is
// what actually bounds it to 1Hz there; LineBased additionally self-limits
// to its own (coarser) cadence.
type Bridge struct {
	indicator  ProgressIndicator
	lastRetry  time.Time
	minRetryGap time.Duration
}

// NewBridge builds a Bridge that renders through indicator.
func NewBridge(indicator ProgressIndicator) *Bridge {
	return &Bridge{indicator: indicator, minRetryGap: time.Second}
}

// NewDefaultBridge picks Interactive, LineBased or Silent for os.Stdout
// based on quiet and TTY-ness, matching the CLI's quiet/non-interactive
// flags routing described in spec.md §6.
func NewDefaultBridge(quiet bool) *Bridge {
	switch {
	case quiet:
		return NewBridge(Silent{})
	case IsTerminal(os.Stdout.Fd()):
		return NewBridge(NewInteractive(os.Stdout))
	default:
		return NewBridge(NewLineBased(os.Stdout, 5*time.Second))
	}
}

var _ kopilock.WaitObserver = (*Bridge)(nil)

func (b *Bridge) OnWaitStart(scope kopilock.Scope, budget kopilock.Budget) {
	msg := startMessage(scope, budget)
	klog.V(1).Info(msg)
	b.indicator.Start(msg)
}

func (b *Bridge) OnRetry(scope kopilock.Scope, elapsed, remaining time.Duration, remainingKnown bool) {
	now := time.Now()
	if !b.lastRetry.IsZero() && now.Sub(b.lastRetry) < b.minRetryGap {
		return
	}
	b.lastRetry = now
	msg := retryMessage(scope, elapsed, remaining, remainingKnown)
	klog.V(2).Info(msg)
	b.indicator.Update(msg)
}

func (b *Bridge) OnAcquired(scope kopilock.Scope, totalWait time.Duration, backend kopilock.Backend) {
	msg := fmt.Sprintf("acquired %s lock after %s (%s)", scope.Label(), totalWait.Round(time.Millisecond), backend)
	klog.V(1).Info(msg)
	b.indicator.Finish(msg)
}

func (b *Bridge) OnTimeout(scope kopilock.Scope, waited time.Duration) {
	msg := fmt.Sprintf("timed out waiting %s for %s lock; override with --lock-timeout or KOPI_LOCK_TIMEOUT", waited.Round(time.Millisecond), scope.Label())
	klog.V(1).Info(msg)
	b.indicator.Finish(msg)
}

func (b *Bridge) OnCancelled(scope kopilock.Scope, waited time.Duration) {
	msg := fmt.Sprintf("cancelled after waiting %s for %s lock", waited.Round(time.Millisecond), scope.Label())
	klog.V(1).Info(msg)
	b.indicator.Finish(msg)
}

func startMessage(scope kopilock.Scope, budget kopilock.Budget) string {
	if d, finite := budget.Value().Duration(); finite {
		return fmt.Sprintf("waiting for %s lock (timeout %s, from %s) — press Ctrl-C to cancel, or pass --lock-timeout to change it",
			scope.Label(), d, budget.Provenance())
	}
	return fmt.Sprintf("waiting for %s lock (no timeout, from %s) — press Ctrl-C to cancel", scope.Label(), budget.Provenance())
}

func retryMessage(scope kopilock.Scope, elapsed, remaining time.Duration, remainingKnown bool) string {
	if remainingKnown {
		return fmt.Sprintf("still waiting for %s lock (%s elapsed, %s remaining)", scope.Label(), elapsed.Round(time.Second), remaining.Round(time.Second))
	}
	return fmt.Sprintf("still waiting for %s lock (%s elapsed)", scope.Label(), elapsed.Round(time.Second))
}
