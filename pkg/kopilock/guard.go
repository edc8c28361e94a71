package kopilock

import (
	"runtime"

	"k8s.io/klog/v2"
)

// Guard is the scoped ownership token representing a held lock (§3/§4.7).
// It borrows its Controller for its full lifetime — the controller must
// outlive every Guard it issues, enforced here by the Guard holding a
// pointer to it rather than copying any state out.
//
// Go has no destructors, so "release on drop" (§9) is emulated with a
// runtime.SetFinalizer safety net: if a caller forgets to call Release,
// the finalizer releases the backend resource and logs a warning rather
// than leaking the lock file descriptor or fallback marker forever. This
// is a backstop, not the primary mechanism — callers MUST still
// `defer guard.Release()` explicitly; relying on the finalizer delays
// release until the next GC cycle, which is unacceptable for a lock
// other processes are waiting on.
type Guard struct {
	controller *Controller
	acq        *Acquisition
	released   bool
}

func newGuard(c *Controller, acq *Acquisition) *Guard {
	g := &Guard{controller: c, acq: acq}
	runtime.SetFinalizer(g, func(g *Guard) {
		if !g.released {
			if err := g.acq.Release(); err != nil {
				klog.Warningf("kopilock: guard for %s released via finalizer after caller forgot Release(), and release itself failed: %v", g.controller.Scope.Label(), err)
			} else {
				klog.Warningf("kopilock: guard for %s released via finalizer — caller forgot to call Release()", g.controller.Scope.Label())
			}
		}
	})
	return g
}

// Backend reports which mechanism holds this guard's lock.
func (g *Guard) Backend() Backend { return g.acq.Backend() }

// ScopeLabel returns the human-readable scope identifier, for logging.
func (g *Guard) ScopeLabel() string { return g.controller.Scope.Label() }

// Scope returns the scope this guard holds.
func (g *Guard) Scope() Scope { return g.controller.Scope }

// Budget returns the timeout budget this guard was acquired under. Any
// further I/O performed while the guard is held (e.g. the cache writer's
// rename retry) should bound itself by this budget's remaining time rather
// than re-resolving a fresh one, so the total wall-clock time the caller's
// configured lock-timeout permits is never exceeded.
func (g *Guard) Budget() Budget { return g.acq.Budget() }

// Release releases the held lock explicitly. It is idempotent: calling it
// more than once (e.g. once explicitly and once via defer) is safe and
// the second call is a no-op. Errors are surfaced to the caller rather
// than only logged, per §4.7 — the drop-time finalizer logs; the
// explicit call does not swallow the error.
func (g *Guard) Release() error {
	if g.released {
		return nil
	}
	g.released = true
	runtime.SetFinalizer(g, nil)
	return g.acq.Release()
}
