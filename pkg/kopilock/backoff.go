package kopilock

import (
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Backoff produces the deterministic polling schedule consumed by both
// lock backends' retry loops: delay_n = min(cap, initial * factor^n). It is
// built directly on top of wait.Backoff (the same type the teacher's own
// flock/posix retry loops already depend on), configured with no jitter so
// the schedule stays deterministic and Steps effectively unbounded so the
// loop's own cancellation/timeout checks are what end it, never the
// schedule itself.
type Backoff struct {
	inner wait.Backoff
}

// NewBackoff builds the default lock-polling schedule: 10ms initial delay,
// factor 2, capped at 1s.
func NewBackoff() *Backoff {
	return NewBackoffWith(10*time.Millisecond, 2.0, time.Second)
}

// NewRenameRetryBackoff builds the distinct schedule used only by the
// durable cache writer's Windows sharing-violation retry path (§4.9):
// 50ms initial, factor 2, capped at 1s. Kept as a separate constructor so
// the two schedules are never confused at a call site.
func NewRenameRetryBackoff() *Backoff {
	return NewBackoffWith(50*time.Millisecond, 2.0, time.Second)
}

// NewBackoffWith builds a schedule with explicit parameters, for tests and
// for any future adjustable path.
func NewBackoffWith(initial time.Duration, factor float64, cap time.Duration) *Backoff {
	return &Backoff{inner: wait.Backoff{
		Duration: initial,
		Factor:   factor,
		Jitter:   0,
		Steps:    1 << 30, // effectively unbounded; callers end the loop via timeout/cancellation
		Cap:      cap,
	}}
}

// Next returns the next sleep duration in the schedule, clamped to cap but
// NOT yet clamped to any remaining budget — callers must additionally
// clamp against Budget.Remaining() themselves (see NextClamped).
func (b *Backoff) Next() time.Duration {
	return b.inner.Step()
}

// NextClamped returns min(Next(), remaining) for a finite budget, or Next()
// unclamped for an Infinite budget, matching §4.2's "a consumer MUST clamp
// each sleep so it never exceeds the remaining budget" with Infinite
// budgets never clamping.
func (b *Backoff) NextClamped(budget Budget) time.Duration {
	d := b.Next()
	if remaining, ok := budget.Remaining(); ok && remaining < d {
		return remaining
	}
	return d
}
