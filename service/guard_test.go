package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/layer-3/tutorauth/adapters/verifier"
	"github.com/layer-3/tutorauth/adapters/wallet"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedCredentials(t *testing.T, at time.Time) (*core.Credentials, *wallet.EthereumKeySigner) {
	t.Helper()
	signer, err := wallet.GenerateEthereumKeySigner()
	require.NoError(t, err)

	auth := NewAuthenticator(core.Ethereum, newSessionStore(core.Ethereum), zerolog.Nop(), WithClock(func() time.Time { return at }))
	session, err := auth.Authenticate(context.Background(), signer, signer.Address())
	require.NoError(t, err)

	return &core.Credentials{Scheme: core.Ethereum, Session: session}, signer
}

func TestGuardAuthorize(t *testing.T) {
	ctx := context.Background()
	creds, signer := signedCredentials(t, issuedAt)
	clk := newClock(issuedAt.Add(time.Hour))
	guard := NewGuard(strictVerifiers(), zerolog.Nop(), WithClock(clk.Now))

	t.Run("valid session yields identity", func(t *testing.T) {
		id, err := guard.Authorize(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(signer.Address()), id.Address)
		assert.Equal(t, core.Ethereum, id.Scheme)
	})

	t.Run("no session", func(t *testing.T) {
		_, err := guard.Authorize(ctx, nil)
		assert.ErrorIs(t, err, core.ErrNoSession)
	})

	t.Run("zero scheme defaults to ethereum", func(t *testing.T) {
		_, err := guard.Authorize(ctx, &core.Credentials{Session: creds.Session})
		require.NoError(t, err)
	})

	t.Run("tampered address", func(t *testing.T) {
		tampered := *creds
		tampered.Session.Address = "0xbbb0000000000000000000000000000000000002"
		_, err := guard.Authorize(ctx, &tampered)
		assert.ErrorIs(t, err, core.ErrInvalidSession)
	})

	t.Run("expired session", func(t *testing.T) {
		clk.Set(creds.Session.Expiry().Add(time.Millisecond))
		defer clk.Set(issuedAt.Add(time.Hour))

		_, err := guard.Authorize(ctx, creds)
		assert.ErrorIs(t, err, core.ErrInvalidSession)
		assert.True(t, core.NeedsReauthentication(err))
	})

	t.Run("scheme without verifier", func(t *testing.T) {
		_, err := guard.Authorize(ctx, &core.Credentials{Scheme: core.Scheme{Name: "tron"}, Session: creds.Session})
		assert.ErrorIs(t, err, core.ErrInvalidSession)
	})

	t.Run("session presented under the wrong scheme", func(t *testing.T) {
		_, err := guard.Authorize(ctx, &core.Credentials{Scheme: core.Solana, Session: creds.Session})
		assert.ErrorIs(t, err, core.ErrInvalidSession)
	})
}

func TestGuardDefaultSolanaVerifier(t *testing.T) {
	ctx := context.Background()
	guard := NewGuard(verifier.ForSchemes(false), zerolog.Nop(), WithClock(func() time.Time { return issuedAt }))
	victim, _ := signedCredentials(t, issuedAt)

	t.Run("solana session claiming an ethereum address", func(t *testing.T) {
		claim := core.NewSession(victim.Session.Address, "AAAA", "anything", issuedAt)
		_, err := guard.Authorize(ctx, &core.Credentials{Scheme: core.Solana, Session: claim})
		assert.ErrorIs(t, err, core.ErrInvalidSession)
	})

	t.Run("well-formed solana session owns nothing on ethereum records", func(t *testing.T) {
		signer, err := wallet.GenerateEd25519KeySigner()
		require.NoError(t, err)
		claim := core.NewSession(signer.Address(), "AAAA", "anything", issuedAt)

		id, err := guard.Authorize(ctx, &core.Credentials{Scheme: core.Solana, Session: claim})
		require.NoError(t, err)
		assert.Equal(t, core.Solana, id.Scheme)

		err = guard.RequireOwner(core.Owner{Scheme: core.Ethereum.Name, Address: signer.Address()}, id)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("ethereum sessions are still recovered", func(t *testing.T) {
		_, err := guard.Authorize(ctx, victim)
		require.NoError(t, err)

		extended := *victim
		extended.Session.ExpiresAt += 365 * 24 * time.Hour.Milliseconds()
		_, err = guard.Authorize(ctx, &extended)
		assert.ErrorIs(t, err, core.ErrInvalidSession)
	})
}

func TestGuardRequireOwner(t *testing.T) {
	guard := NewGuard(strictVerifiers(), zerolog.Nop())

	eth := func(address string) core.Owner { return core.Owner{Scheme: core.Ethereum.Name, Address: address} }
	sol := func(address string) core.Owner { return core.Owner{Scheme: core.Solana.Name, Address: address} }

	tests := []struct {
		name  string
		owner core.Owner
		id    core.Identity
		err   error
	}{
		{"same ethereum address", eth("0xaaa"), core.Identity{Scheme: core.Ethereum, Address: "0xaaa"}, nil},
		{"ethereum ignores case", eth("0xAAA"), core.Identity{Scheme: core.Ethereum, Address: "0xaaa"}, nil},
		{"different ethereum address", eth("0xaaa"), core.Identity{Scheme: core.Ethereum, Address: "0xbbb"}, core.ErrUnauthorized},
		{"solana is case sensitive", sol("AbC"), core.Identity{Scheme: core.Solana, Address: "abc"}, core.ErrUnauthorized},
		{"same solana address", sol("AbC"), core.Identity{Scheme: core.Solana, Address: "AbC"}, nil},
		{"solana identity on ethereum record", eth("0xaaa"), core.Identity{Scheme: core.Solana, Address: "0xaaa"}, core.ErrUnauthorized},
		{"ethereum identity on solana record", sol("AbC"), core.Identity{Scheme: core.Ethereum, Address: "abc"}, core.ErrUnauthorized},
		{"empty owner", core.Owner{}, core.Identity{Scheme: core.Ethereum, Address: "0xaaa"}, core.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.RequireOwner(tt.owner, tt.id)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
			assert.False(t, core.NeedsReauthentication(err))
		})
	}
}

func TestGuardRecordsDecisions(t *testing.T) {
	_, m := metrics.NewRegistry()
	guard := NewGuard(acceptAll(), zerolog.Nop(), WithMetrics(m))
	ctx := context.Background()

	_, err := guard.Authorize(ctx, nil)
	require.Error(t, err)
	id, err := guard.Authorize(ctx, credentials(core.Ethereum, "0xbbb"))
	require.NoError(t, err)
	require.Error(t, guard.RequireOwner(core.Owner{Scheme: core.Ethereum.Name, Address: "0xaaa"}, id))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues(OutcomeNoSession)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues(OutcomeAuthenticated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues(OutcomeUnauthorized)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("ethereum", "accepted")))
}
