package drives

import "errors"

var (
	ErrRemoteUnavailable       = errors.New("remote drive unavailable")
	ErrNoFiles                 = errors.New("no files found")
	ErrNotFound                = errors.New("not found")
	ErrPermissionRequired      = errors.New("permission required")
	ErrInteractiveAuthRequired = errors.New("interactive authorization required")
)

// NeedsUser reports whether err can only be resolved by the user granting access again.
func NeedsUser(err error) bool {
	return errors.Is(err, ErrPermissionRequired) || errors.Is(err, ErrInteractiveAuthRequired)
}
