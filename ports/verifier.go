package ports

import (
	"time"

	"github.com/layer-3/tutorauth/core"
)

// Verifier decides whether a presented session is acceptable at now.
// It never fails: malformed input is simply not valid.
type Verifier interface {
	Verify(session core.Session, now time.Time) bool
}
