package store

import (
	"fmt"
	"net/http"

	"github.com/layer-3/tutorauth/adapters/tokenizer"
	"github.com/layer-3/tutorauth/core"
)

// SessionFromRequest reads the scheme's session cookie from r. A missing
// cookie is core.ErrNoSession; an unreadable one is core.ErrInvalidSession.
func SessionFromRequest(r *http.Request, scheme core.Scheme) (core.Session, error) {
	c, err := r.Cookie(scheme.StorageKey)
	if err != nil || c.Value == "" {
		return core.Session{}, core.ErrNoSession
	}

	session, err := tokenizer.NewCookieTokenizer().TokenToSession(c.Value)
	if err != nil {
		return core.Session{}, fmt.Errorf("%w: %v", core.ErrInvalidSession, err)
	}
	return session, nil
}
