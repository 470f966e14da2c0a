package ports

import "github.com/layer-3/tutorauth/core"

// Tokenizer converts between sessions and a transport string form
type Tokenizer interface {
	SessionToToken(session core.Session) (string, error)
	TokenToSession(token string) (core.Session, error)
}
