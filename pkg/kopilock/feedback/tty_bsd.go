//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package feedback

import "golang.org/x/sys/unix"

const ioctlReadTermios = unix.TIOCGETA
