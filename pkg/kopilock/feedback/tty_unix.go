//go:build unix

package feedback

import "golang.org/x/sys/unix"

// IsTerminal reports whether fd refers to a terminal, via the same
// ioctl(TCGETS/TIOCGETA) probe golang.org/x/term uses internally — kept
// in-tree on top of the already-wired golang.org/x/sys/unix rather than
// adding a direct dependency on x/term, since no example in the
// retrieval pack imports it (see SPEC_FULL.md's Feedback Bridge module).
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), ioctlReadTermios)
	return err == nil
}
