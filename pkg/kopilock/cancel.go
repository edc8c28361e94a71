package kopilock

import (
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// Token is a shared, cheap-to-check cancellation flag. It is safe to read
// from any goroutine (including, indirectly, from the OS signal handler
// that sets it) without locking.
type Token struct {
	flag atomic.Bool
	once sync.Once
	done chan struct{}
}

// NewToken creates a standalone token, for tests that want to drive
// cancellation themselves rather than reacting to OS signals.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancelled reports whether this token has been set. Lock-free.
func (t *Token) Cancelled() bool { return t.flag.Load() }

// Done returns a channel that is closed exactly once, when the token is
// cancelled, so a polling loop's sleep can be interrupted immediately
// instead of waiting out its backoff tick.
func (t *Token) Done() <-chan struct{} { return t.done }

// Cancel sets the flag and closes Done(), idempotently. Signal handlers
// call this directly; it performs no allocation and no logging, satisfying
// the async-signal-safety requirement in §5/§9 (the sync.Once guards
// against double-close but does not block the first, real call, which is
// the only one reachable from async-signal context in practice since
// handlers install once).
func (t *Token) Cancel() {
	t.flag.Store(true)
	t.once.Do(func() { close(t.done) })
}

var (
	registryOnce  sync.Once
	registryToken *Token
)

// Registry installs OS interrupt/termination signal handlers exactly once
// per process and exposes the shared Token they set. Unsupported-platform
// registration failures fall back to a never-cancelled token and log once,
// per §4.3 — acquisition then relies solely on its timeout budget.
func Registry() *Token {
	registryOnce.Do(func() {
		registryToken = NewToken()
		if err := installSignalHandlers(registryToken); err != nil {
			klog.Warningf("kopilock: cancellation signal handlers unavailable, falling back to timeout-only acquisition: %v", err)
		}
	})
	return registryToken
}
