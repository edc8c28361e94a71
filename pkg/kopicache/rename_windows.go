//go:build windows

package kopicache

import (
	"errors"

	"golang.org/x/sys/windows"
)

// renameErrorIsTransient reports whether err is a sharing violation or an
// access-denied error — both observed on Windows (including SMB/UNC paths)
// when another process briefly holds the target open — which is worth
// retrying rather than failing immediately, per §4.9 step 5.
func renameErrorIsTransient(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) || errors.Is(err, windows.ERROR_ACCESS_DENIED)
}
