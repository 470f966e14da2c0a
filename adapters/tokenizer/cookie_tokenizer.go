package tokenizer

import (
	"fmt"
	"net/url"

	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
)

// CookieTokenizer carries a session in a cookie value as query-escaped JSON.
// Raw JSON cannot go into a cookie: net/http drops quotes and commas.
type CookieTokenizer struct{}

// NewCookieTokenizer creates a tokenizer for cookie values
func NewCookieTokenizer() ports.Tokenizer {
	return CookieTokenizer{}
}

func (CookieTokenizer) SessionToToken(session core.Session) (string, error) {
	raw, err := core.EncodeSession(session)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(raw), nil
}

func (CookieTokenizer) TokenToSession(token string) (core.Session, error) {
	raw, err := url.QueryUnescape(token)
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to unescape cookie: %w", err)
	}
	return core.DecodeSession(raw)
}
