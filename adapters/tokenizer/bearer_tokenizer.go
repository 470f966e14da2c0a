package tokenizer

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
)

// BearerTokenizer carries a session in an Authorization header as
// unpadded base64url of its JSON form
type BearerTokenizer struct{}

// NewBearerTokenizer creates a tokenizer for Authorization headers
func NewBearerTokenizer() ports.Tokenizer {
	return BearerTokenizer{}
}

func (BearerTokenizer) SessionToToken(session core.Session) (string, error) {
	raw, err := core.EncodeSession(session)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString([]byte(raw)), nil
}

func (BearerTokenizer) TokenToSession(token string) (core.Session, error) {
	token = strings.TrimRight(strings.TrimSpace(token), "=")
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to decode bearer token: %w", err)
	}
	return core.DecodeSession(string(raw))
}
