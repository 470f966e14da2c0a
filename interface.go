package tutorauth

import (
	"context"

	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
)

// Client represents the public interface of a wallet session on the client side
type Client interface {
	// Login asks the wallet to sign a fresh challenge for address and stores
	// the resulting session, replacing the previous one
	Login(ctx context.Context, provider ports.SignatureProvider, address string) (core.Session, error)

	// Session returns the current unexpired session or ErrNoSession
	Session(ctx context.Context) (core.Session, error)

	// Logout removes the session from every location it is kept in
	Logout(ctx context.Context) error

	// Scheme returns the wallet scheme this client signs in with
	Scheme() core.Scheme
}
