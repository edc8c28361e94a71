package kopilock

import (
	"os"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"
)

// Acquisition is the opaque owner of a held lock's backend resource
// (an open, locked file handle for the advisory backend, or a staged
// marker file for the fallback backend). It releases exactly once.
type Acquisition struct {
	backend Backend
	budget  Budget
	release func() error
	done    bool
}

// Backend reports which mechanism produced this acquisition.
func (a *Acquisition) Backend() Backend { return a.backend }

// Budget returns the timeout budget the acquisition was made under, so
// callers can bound further lock-adjacent I/O (e.g. the cache writer's
// rename retry, §4.9 step 5) by whatever time actually remains rather than
// re-resolving a fresh window.
func (a *Acquisition) Budget() Budget { return a.budget }

// Release releases the backend resource. Safe to call multiple times;
// only the first call has effect.
func (a *Acquisition) Release() error {
	if a.done {
		return nil
	}
	a.done = true
	return a.release()
}

// Controller acquires and releases the lock for exactly one Scope. The
// Inspector classification of the scope's lock directory is resolved once,
// at construction, and fixes which backend this Controller uses for its
// entire lifetime.
type Controller struct {
	Scope   Scope
	Path    string
	Backend Backend
	hygiene *Hygiene
}

// NewController resolves scope's lock path under home, ensures its parent
// directory exists with owner-only permissions, classifies the hosting
// volume, and returns a Controller fixed to the resulting backend.
func NewController(scope Scope, home string, inspector Inspector) (*Controller, error) {
	if inspector == nil {
		inspector = DefaultInspector
	}
	path, err := scope.Path(home)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, &AcquireError{Scope: scope, Cause: err}
	}
	class, err := inspector.Classify(dir)
	if err != nil {
		klog.V(2).Infof("kopilock: volume classification failed for %s, assuming fallback backend: %v", dir, err)
		class = RequiresFallback
	}
	backend := BackendAdvisory
	if class == RequiresFallback {
		backend = BackendFallback
	}
	klog.V(2).Infof("kopilock: scope %s backend=%s path=%s", scope.Label(), backend, path)
	return &Controller{Scope: scope, Path: path, Backend: backend, hygiene: NewHygiene()}, nil
}

// AcquireWith runs req's acquisition against this controller's backend and
// returns a Guard on success, or a *TimeoutError / *CancelledError /
// *AcquireError on failure.
func (c *Controller) AcquireWith(req Request) (*Guard, error) {
	var acq *Acquisition
	var err error
	switch c.Backend {
	case BackendAdvisory:
		acq, err = acquireAdvisory(c.Path, req)
	case BackendFallback:
		acq, err = acquireFallback(c.Path, req, c.hygiene)
	default:
		return nil, &AcquireError{Scope: req.Scope, Cause: errInvalidBackend}
	}
	if err != nil {
		return nil, err
	}
	return newGuard(c, acq), nil
}

var errInvalidBackend = &ValidationError{Field: "backend", Reason: "unknown lock backend"}

// attemptFunc performs one non-blocking acquisition attempt. ok=true means
// the lock was acquired and release must later be called exactly once.
// A non-nil err (with ok=false) is a hard failure, not mere contention,
// and aborts the poll loop immediately as an *AcquireError.
type attemptFunc func() (ok bool, release func() error, err error)

// pollLoop implements the retry/backoff/cancellation/timeout semantics
// shared by both backends (§4.5 steps 1-6, §4.6 steps 1-2): try once
// immediately; if Finite(0), stop there; otherwise loop checking
// cancellation, then the budget, sleeping a clamped backoff tick between
// attempts, until acquired, cancelled, or the budget is exhausted.
func pollLoop(scope Scope, req Request, backend Backend, try attemptFunc) (*Acquisition, error) {
	observer := req.Observer
	if observer == nil {
		observer = NoopObserver{}
	}
	token := req.Token
	budget := req.Budget

	ok, release, err := try()
	if err != nil {
		return nil, &AcquireError{Scope: scope, Cause: err}
	}
	if ok {
		return &Acquisition{backend: backend, budget: budget, release: release}, nil
	}

	// Finite(0): immediate mode. One attempt only, no observer retry event.
	if d, finite := budget.Value().Duration(); finite && d == 0 {
		observer.OnTimeout(scope, 0)
		return nil, &TimeoutError{Scope: scope, Waited: 0, ResolvedTimeout: 0, Provenance: budget.Provenance()}
	}

	observer.OnWaitStart(scope, budget)
	backoff := req.Backoff
	if backoff == nil {
		backoff = NewBackoff()
	}

	for {
		if token != nil && token.Cancelled() {
			waited := budget.Elapsed()
			observer.OnCancelled(scope, waited)
			return nil, &CancelledError{Scope: scope, Waited: waited}
		}
		if budget.Expired() {
			waited := budget.Elapsed()
			timeout, _ := budget.Value().Duration()
			observer.OnTimeout(scope, waited)
			return nil, &TimeoutError{Scope: scope, Waited: waited, ResolvedTimeout: timeout, Provenance: budget.Provenance()}
		}

		sleep := backoff.NextClamped(budget)
		if sleep > 0 {
			if token != nil {
				select {
				case <-time.After(sleep):
				case <-token.Done():
				}
			} else {
				time.Sleep(sleep)
			}
		}

		if token != nil && token.Cancelled() {
			waited := budget.Elapsed()
			observer.OnCancelled(scope, waited)
			return nil, &CancelledError{Scope: scope, Waited: waited}
		}

		ok, release, err = try()
		if err != nil {
			return nil, &AcquireError{Scope: scope, Cause: err}
		}
		if ok {
			waited := budget.Elapsed()
			observer.OnAcquired(scope, waited, backend)
			return &Acquisition{backend: backend, budget: budget, release: release}, nil
		}

		elapsed := budget.Elapsed()
		remaining, known := budget.Remaining()
		observer.OnRetry(scope, elapsed, remaining, known)
	}
}
