//go:build linux

package feedback

import "golang.org/x/sys/unix"

const ioctlReadTermios = unix.TCGETS
