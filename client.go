package tutorauth

import (
	"context"
	"errors"

	"github.com/layer-3/tutorauth/adapters/store"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
	"github.com/layer-3/tutorauth/service"
	"github.com/rs/zerolog"
)

// Options configures a Client
type Options struct {
	// Scheme defaults to core.Ethereum
	Scheme core.Scheme

	// Persistent keeps the session across restarts. Required.
	Persistent ports.KeyValueStore

	// Cookies mirrors the session for server-rendered requests. Optional.
	Cookies ports.CookieStore

	Logger zerolog.Logger
}

type client struct {
	auth *service.Authenticator
}

// New creates a Client over a dual session store
func New(opts Options) (Client, error) {
	if opts.Persistent == nil {
		return nil, errors.New("persistent store is required")
	}
	scheme := opts.Scheme
	if scheme.IsZero() {
		scheme = core.Ethereum
	}

	sessions := store.NewDualStore(scheme, opts.Persistent, opts.Cookies, opts.Logger)
	return &client{
		auth: service.NewAuthenticator(scheme, sessions, opts.Logger),
	}, nil
}

func (c *client) Login(ctx context.Context, provider ports.SignatureProvider, address string) (core.Session, error) {
	return c.auth.Authenticate(ctx, provider, address)
}

func (c *client) Session(ctx context.Context) (core.Session, error) {
	return c.auth.Current(ctx)
}

func (c *client) Logout(ctx context.Context) error {
	return c.auth.Logout(ctx)
}

func (c *client) Scheme() core.Scheme {
	return c.auth.Scheme()
}
