//go:build windows

package kopilock

import (
	"golang.org/x/sys/windows"
)

// acquireAdvisory implements §4.5 on Windows via LockFileEx with
// LOCKFILE_FAIL_IMMEDIATELY|LOCKFILE_EXCLUSIVE_LOCK, the non-blocking
// exclusive-lock equivalent of POSIX flock(2) used in advisory_unix.go.
func acquireAdvisory(path string, req Request) (*Acquisition, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, &AcquireError{Scope: req.Scope, Cause: err}
	}
	handle, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, // no sharing: exclusive handle access in addition to the byte-range lock
		nil,
		windows.OPEN_ALWAYS,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, &AcquireError{Scope: req.Scope, Cause: err}
	}

	var overlapped windows.Overlapped
	try := func() (bool, func() error, error) {
		const flags = windows.LOCKFILE_FAIL_IMMEDIATELY | windows.LOCKFILE_EXCLUSIVE_LOCK
		err := windows.LockFileEx(handle, flags, 0, 1, 0, &overlapped)
		switch err {
		case nil:
			release := func() error {
				unlockErr := windows.UnlockFileEx(handle, 0, 1, 0, &overlapped)
				closeErr := windows.CloseHandle(handle)
				if unlockErr != nil {
					return unlockErr
				}
				return closeErr
			}
			return true, release, nil
		case windows.ERROR_LOCK_VIOLATION, windows.ERROR_IO_PENDING:
			return false, nil, nil
		default:
			return false, nil, err
		}
	}

	acq, err := pollLoop(req.Scope, req, BackendAdvisory, try)
	if err != nil {
		_ = windows.CloseHandle(handle)
		return nil, err
	}
	return acq, nil
}
