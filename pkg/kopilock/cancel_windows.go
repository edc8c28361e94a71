//go:build windows

package kopilock

import (
	"golang.org/x/sys/windows"
)

// installSignalHandlers registers a Windows console control handler that
// flips tok's flag on Ctrl-C / Ctrl-Break / close, mirroring the POSIX
// SIGINT/SIGTERM handler in cancel_unix.go.
func installSignalHandlers(tok *Token) error {
	handler := func(ctrlType uint32) uintptr {
		switch ctrlType {
		case windows.CTRL_C_EVENT, windows.CTRL_BREAK_EVENT, windows.CTRL_CLOSE_EVENT, windows.CTRL_SHUTDOWN_EVENT:
			tok.Cancel()
			return 1
		}
		return 0
	}
	return windows.SetConsoleCtrlHandler(windows.NewCallback(handler), true)
}
