//go:build unix

package kopilock

import (
	"os"

	"golang.org/x/sys/unix"
)

// acquireAdvisory implements §4.5: open (creating if absent) the lock file
// with owner-only permissions, then attempt an exclusive, non-blocking
// flock(2) in a loop. Grounded directly in the teacher's
// pkg/operator/staticpod/internal/flock (syscall.Flock + EWOULDBLOCK) and
// pkg/filelock/posix.go (fcntl variant), generalised to the shared
// pollLoop retry/backoff/cancellation/timeout contract.
func acquireAdvisory(path string, req Request) (*Acquisition, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600)
	if err != nil {
		return nil, &AcquireError{Scope: req.Scope, Cause: err}
	}

	fd := int(f.Fd())
	try := func() (bool, func() error, error) {
		err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		switch err {
		case nil:
			release := func() error {
				unlockErr := unix.Flock(fd, unix.LOCK_UN)
				closeErr := f.Close()
				if unlockErr != nil {
					return unlockErr
				}
				return closeErr
			}
			return true, release, nil
		case unix.EWOULDBLOCK, unix.EAGAIN, unix.EINTR:
			return false, nil, nil
		default:
			return false, nil, err
		}
	}

	acq, err := pollLoop(req.Scope, req, BackendAdvisory, try)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return acq, nil
}
