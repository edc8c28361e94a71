//go:build windows

package kopilock

import (
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

// volumeRoot returns the drive-root form GetVolumeInformation expects
// (e.g. "C:\\") for an arbitrary directory path.
func volumeRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	vol := filepath.VolumeName(abs)
	if vol == "" {
		return `\`, nil
	}
	return vol + `\`, nil
}

// On Windows, DRIVE_REMOTE (network share) and FAT/exFAT volumes cannot
// be trusted to serialise advisory (LockFileEx) locks reliably across
// hosts, matching the POSIX classification's treatment of NFS/SMB/FAT.
func classifyVolume(dir string) (VolumeClass, error) {
	root, err := volumeRoot(dir)
	if err != nil {
		return RequiresFallback, err
	}
	rootPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return RequiresFallback, err
	}

	driveType := windows.GetDriveType(rootPtr)
	const driveRemote = 4 // windows.DRIVE_REMOTE
	if driveType == driveRemote {
		return RequiresFallback, nil
	}

	var fsNameBuf [windows.MAX_PATH + 1]uint16
	if err := windows.GetVolumeInformation(rootPtr, nil, 0, nil, nil, nil, &fsNameBuf[0], uint32(len(fsNameBuf))); err != nil {
		// Can't determine the filesystem name; be conservative.
		return RequiresFallback, nil
	}
	fsName := strings.ToLower(windows.UTF16ToString(fsNameBuf[:]))
	if strings.Contains(fsName, "fat") || strings.Contains(fsName, "exfat") {
		return RequiresFallback, nil
	}
	return Advisory, nil
}
