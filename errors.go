package tutorauth

import "github.com/layer-3/tutorauth/core"

var (
	// ErrNoSession is returned when no session is stored or it has expired
	ErrNoSession = core.ErrNoSession

	// ErrInvalidSession is returned when the server rejects a presented session
	ErrInvalidSession = core.ErrInvalidSession

	// ErrUnauthorized is returned when the session does not own the resource
	ErrUnauthorized = core.ErrUnauthorized

	// ErrUserRejected is returned by wallets when the user declines to sign
	ErrUserRejected = core.ErrUserRejected
)

// NeedsReauthentication reports whether err means the user must sign in again
func NeedsReauthentication(err error) bool {
	return core.NeedsReauthentication(err)
}
