//go:build linux

package kopilock

import (
	"golang.org/x/sys/unix"
)

// Magic numbers for filesystem types where advisory (flock/fcntl) locks
// are known to be unreliable, per SPEC_FULL.md's FilesystemInspector
// classification table. Values match the kernel's statfs(2)/magic.h.
const (
	nfsSuperMagic   = 0x6969
	smbSuperMagic   = 0x517b
	cifsMagicNumber = 0xff534d42
	msdosSuperMagic = 0x4d44
	fuseSuperMagic  = 0x65735546
	ncpSuperMagic   = 0x564c
	afsSuperMagic   = 0x5346414f
)

func classifyVolume(dir string) (VolumeClass, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return RequiresFallback, err
	}
	switch uint64(st.Type) { //nolint:unconvert // Type width varies by arch
	case nfsSuperMagic, smbSuperMagic, cifsMagicNumber, msdosSuperMagic, fuseSuperMagic, ncpSuperMagic, afsSuperMagic:
		return RequiresFallback, nil
	default:
		return Advisory, nil
	}
}
