//go:build windows

package feedback

import "golang.org/x/sys/windows"

// IsTerminal reports whether fd refers to a console, via GetConsoleMode —
// the Windows equivalent of the POSIX ioctl probe in tty_unix.go.
func IsTerminal(fd uintptr) bool {
	var mode uint32
	err := windows.GetConsoleMode(windows.Handle(fd), &mode)
	return err == nil
}
