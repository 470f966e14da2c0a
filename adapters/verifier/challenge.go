package verifier

import (
	"time"

	"github.com/layer-3/tutorauth/core"
)

// issuedChallenge reports whether session carries the exact challenge the
// scheme builds for its address and timestamp, and whether its expiry is
// the fixed lifetime after that timestamp. The signature covers the
// message only, so the plain Timestamp and ExpiresAt fields are trusted
// only once they agree with it.
func issuedChallenge(scheme core.Scheme, session core.Session) bool {
	if session.ExpiresAt != session.Timestamp+core.SessionTTL.Milliseconds() {
		return false
	}
	address := scheme.NormalizeAddress(session.Address)
	return session.Message == scheme.BuildMessage(address, time.UnixMilli(session.Timestamp))
}
