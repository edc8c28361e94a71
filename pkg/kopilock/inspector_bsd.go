//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package kopilock

import (
	"strings"

	"golang.org/x/sys/unix"
)

// BSD-family statfs_t has no numeric f_type; it names the filesystem in
// Fstypename instead, so classification matches on that string rather
// than on the magic-number table used on Linux.
var bsdFallbackFSNames = []string{"nfs", "smbfs", "cifs", "msdos", "exfat", "fuse", "afpfs", "webdav"}

func classifyVolume(dir string) (VolumeClass, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return RequiresFallback, err
	}
	name := fstypenameToString(st.Fstypename[:])
	for _, n := range bsdFallbackFSNames {
		if strings.Contains(name, n) {
			return RequiresFallback, nil
		}
	}
	return Advisory, nil
}

func fstypenameToString(raw []int8) string {
	b := make([]byte, 0, len(raw))
	for _, c := range raw {
		if c == 0 {
			break
		}
		b = append(b, byte(c))
	}
	return strings.ToLower(string(b))
}
