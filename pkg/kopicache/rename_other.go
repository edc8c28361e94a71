//go:build !windows

package kopicache

// renameErrorIsTransient is always false on non-Windows platforms: POSIX
// rename(2) failures (other than it not existing, which can't happen
// here since we just created the temp file) are not transient, per
// §4.9's note that the sharing-violation retry path is Windows-specific.
func renameErrorIsTransient(err error) bool {
	return false
}
