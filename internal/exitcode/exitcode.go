// Package exitcode maps kopilock/kopicache error types to the process
// exit codes spec.md §5 assigns them, so cmd/kopi's subcommands can share
// one mapping instead of re-deriving it at each call site.
package exitcode

import (
	"errors"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

const (
	OK               = 0
	Timeout          = 1
	Cancelled        = 130
	AcquireFailure   = 2
	Validation       = 3
	ScopeUnavailable = 4
	CachePersist     = 5
	Unknown          = 6
)

// For classifies err into one of the codes above. A nil err maps to OK.
func For(err error) int {
	if err == nil {
		return OK
	}

	var timeoutErr *kopilock.TimeoutError
	if errors.As(err, &timeoutErr) {
		return Timeout
	}

	var cancelledErr *kopilock.CancelledError
	if errors.As(err, &cancelledErr) {
		return Cancelled
	}

	var acquireErr *kopilock.AcquireError
	if errors.As(err, &acquireErr) {
		return AcquireFailure
	}

	var validationErr *kopilock.ValidationError
	if errors.As(err, &validationErr) {
		return Validation
	}

	var scopeErr *kopilock.ScopeUnavailableError
	if errors.As(err, &scopeErr) {
		return ScopeUnavailable
	}

	var cacheErr *kopilock.CachePersistError
	if errors.As(err, &cacheErr) {
		return CachePersist
	}

	return Unknown
}
