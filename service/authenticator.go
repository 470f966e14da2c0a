package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
	"github.com/rs/zerolog"
)

// Authenticator turns a wallet signature into a stored session. It is the
// only writer of its scheme's session store.
type Authenticator struct {
	scheme core.Scheme
	store  ports.SessionStore
	logger zerolog.Logger
	opts   options
}

// NewAuthenticator creates an authenticator for one scheme namespace
func NewAuthenticator(scheme core.Scheme, store ports.SessionStore, logger zerolog.Logger, opts ...Option) *Authenticator {
	return &Authenticator{
		scheme: scheme,
		store:  store,
		logger: logger.With().Str("component", "authenticator").Str("scheme", scheme.Name).Logger(),
		opts:   newOptions(opts),
	}
}

// Scheme returns the namespace this authenticator writes to
func (a *Authenticator) Scheme() core.Scheme {
	return a.scheme
}

// Authenticate asks provider to sign a fresh challenge for address and
// stores the resulting session, replacing any previous one.
//
// The call blocks for as long as the provider does; only ctx cancels it.
// Wallet failures are returned as *core.AuthenticationError.
func (a *Authenticator) Authenticate(ctx context.Context, provider ports.SignatureProvider, address string) (session core.Session, err error) {
	defer func() { a.opts.metrics.RecordAuthentication(a.scheme.Name, err) }()

	if provider == nil {
		return core.Session{}, &core.AuthenticationError{
			Reason: "no wallet is connected",
			Err:    core.ErrProviderUnavailable,
		}
	}

	address = a.scheme.NormalizeAddress(address)
	if address == "" {
		return core.Session{}, &core.AuthenticationError{
			Reason: "no wallet address selected",
			Err:    core.ErrInvalidInput,
		}
	}

	issuedAt := a.opts.now()
	message := a.scheme.BuildMessage(address, issuedAt)

	sig, err := provider.SignMessage(ctx, address, []byte(message))
	if err != nil {
		return core.Session{}, &core.AuthenticationError{Reason: signFailureReason(err), Err: err}
	}
	if len(sig) == 0 {
		return core.Session{}, &core.AuthenticationError{
			Reason: "wallet returned an empty signature",
			Err:    core.ErrProviderUnavailable,
		}
	}

	session = core.NewSession(address, a.scheme.EncodeSignature(sig), message, issuedAt)
	if err := a.store.Set(ctx, session); err != nil {
		return core.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	a.logger.Info().
		Str("address", address).
		Time("expires_at", session.Expiry()).
		Msg("session established")

	return session, nil
}

// Current returns the stored session. An expired session is cleared from
// every location and reported as core.ErrNoSession.
func (a *Authenticator) Current(ctx context.Context) (core.Session, error) {
	session, err := a.store.Get(ctx)
	if err != nil {
		return core.Session{}, err
	}

	if session.Expired(a.opts.now()) {
		a.logger.Debug().Str("address", session.Address).Msg("evicting expired session")
		if err := a.store.Clear(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("failed to evict expired session")
		}
		return core.Session{}, core.ErrNoSession
	}

	return session, nil
}

// Logout removes the session from every location
func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	a.logger.Info().Msg("session cleared")
	return nil
}

func signFailureReason(err error) string {
	switch {
	case errors.Is(err, core.ErrUserRejected), errors.Is(err, context.Canceled):
		return "signature request was rejected"
	case errors.Is(err, core.ErrProviderUnavailable):
		return "wallet is unavailable"
	default:
		return "wallet could not sign the message"
	}
}
