//go:build !unix && !windows

package feedback

// IsTerminal conservatively reports false on platforms with no known TTY
// probe, routing the feedback bridge to the LineBased renderer.
func IsTerminal(fd uintptr) bool { return false }
