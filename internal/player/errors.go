package player

import "errors"

var (
	// User-facing errors, reported through the Notifier
	ErrInvalidFile     = errors.New("please select a valid audio file")
	ErrWrongPassphrase = errors.New("wrong passphrase")
	ErrThrottled       = errors.New("too many passphrase attempts, try again later")

	// Guards
	ErrNoSource      = errors.New("no track source is active")
	ErrAdminRequired = errors.New("admin panel is not unlocked")
	ErrLocked        = errors.New("player is locked")
	ErrUnknownAction = errors.New("unknown action")
)

// IsNotice reports whether err is one the widget has already sent to its Notifier.
func IsNotice(err error) bool {
	return errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrWrongPassphrase) || errors.Is(err, ErrThrottled)
}
