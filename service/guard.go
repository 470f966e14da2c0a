package service

import (
	"context"

	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
	"github.com/rs/zerolog"
)

// Guard outcomes recorded in metrics
const (
	OutcomeNoSession      = "no_session"
	OutcomeInvalidSession = "invalid_session"
	OutcomeAuthenticated  = "authenticated"
	OutcomeUnauthorized   = "unauthorized"
	OutcomeGranted        = "granted"
)

// Guard gates privileged operations. Every call re-verifies the presented
// session; nothing is cached between requests.
type Guard struct {
	verifiers map[string]ports.Verifier
	logger    zerolog.Logger
	opts      options
}

// NewGuard creates a guard that verifies sessions with the verifier
// registered under the credentials' scheme name
func NewGuard(verifiers map[string]ports.Verifier, logger zerolog.Logger, opts ...Option) *Guard {
	return &Guard{
		verifiers: verifiers,
		logger:    logger.With().Str("component", "guard").Logger(),
		opts:      newOptions(opts),
	}
}

// Authorize turns presented credentials into a trusted identity.
// Missing credentials yield core.ErrNoSession; a session the scheme's
// verifier rejects yields core.ErrInvalidSession.
func (g *Guard) Authorize(ctx context.Context, creds *core.Credentials) (core.Identity, error) {
	if creds == nil {
		g.opts.metrics.RecordGuardDecision(OutcomeNoSession)
		return core.Identity{}, core.ErrNoSession
	}

	scheme := creds.Scheme
	if scheme.IsZero() {
		scheme = core.Ethereum
	}

	verifier, ok := g.verifiers[scheme.Name]
	if !ok {
		g.logger.Warn().Str("scheme", scheme.Name).Msg("no verifier registered for scheme")
		g.opts.metrics.RecordGuardDecision(OutcomeInvalidSession)
		return core.Identity{}, core.ErrInvalidSession
	}

	valid := verifier.Verify(creds.Session, g.opts.now())
	g.opts.metrics.RecordVerification(scheme.Name, valid)
	if !valid {
		g.logger.Debug().
			Str("scheme", scheme.Name).
			Str("address", creds.Session.Address).
			Msg("session rejected")
		g.opts.metrics.RecordGuardDecision(OutcomeInvalidSession)
		return core.Identity{}, core.ErrInvalidSession
	}

	g.opts.metrics.RecordGuardDecision(OutcomeAuthenticated)
	return core.Identity{
		Scheme:  scheme,
		Address: scheme.NormalizeAddress(creds.Session.Address),
	}, nil
}

// RequireOwner fails with core.ErrUnauthorized unless id is owner. Both the
// scheme and the address must match; an address never owns records of
// another scheme.
func (g *Guard) RequireOwner(owner core.Owner, id core.Identity) error {
	if owner.Scheme != id.Scheme.Name || !id.Scheme.SameAddress(owner.Address, id.Address) {
		g.logger.Info().
			Str("owner_scheme", owner.Scheme).
			Str("owner", owner.Address).
			Str("scheme", id.Scheme.Name).
			Str("address", id.Address).
			Msg("ownership check failed")
		g.opts.metrics.RecordGuardDecision(OutcomeUnauthorized)
		return core.ErrUnauthorized
	}
	g.opts.metrics.RecordGuardDecision(OutcomeGranted)
	return nil
}
