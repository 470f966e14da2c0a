package service

import (
	"context"
	"errors"
	"io"
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

func TestAuthenticateRecoversAddress(t *testing.T) {
	ctx := context.Background()
	signer, err := wallet.GenerateEthereumKeySigner()
	require.NoError(t, err)

	sessions := newSessionStore(core.Ethereum)
	auth := NewAuthenticator(core.Ethereum, sessions, zerolog.Nop())

	session, err := auth.Authenticate(ctx, signer, signer.Address())
	require.NoError(t, err)

	assert.Equal(t, strings.ToLower(signer.Address()), session.Address)
	assert.True(t, strings.HasPrefix(session.Signature, "0x"))
	assert.Equal(t, session.Timestamp+core.SessionTTL.Milliseconds(), session.ExpiresAt)
	assert.Equal(t, session, requireStored(t, sessions))

	signerAddr, err := verifier.RecoverAddress(session.Message, session.Signature)
	require.NoError(t, err)
	assert.True(t, strings.EqualFold(signer.Address(), signerAddr.Hex()))
	assert.True(t, verifier.NewRecoverVerifier().Verify(session, time.Now()))
}

func TestAuthenticateFixedTimeFlow(t *testing.T) {
	ctx := context.Background()
	signer, err := wallet.GenerateEthereumKeySigner()
	require.NoError(t, err)

	clk := newClock(issuedAt)
	auth := NewAuthenticator(core.Ethereum, newSessionStore(core.Ethereum), zerolog.Nop(), WithClock(clk.Now))

	session, err := auth.Authenticate(ctx, signer, signer.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), session.Timestamp)
	assert.Equal(t, int64(1700086400000), session.ExpiresAt)
	assert.Contains(t, session.Message, "Expires: 2023-11-15T22:13:20.000Z")

	v := verifier.NewRecoverVerifier()
	assert.True(t, v.Verify(session, issuedAt))
	assert.True(t, v.Verify(session, time.UnixMilli(1700086400000)))
	assert.False(t, v.Verify(session, time.UnixMilli(1700086400001)))
}

func TestAuthenticateSolana(t *testing.T) {
	ctx := context.Background()
	signer, err := wallet.GenerateEd25519KeySigner()
	require.NoError(t, err)

	sessions := newSessionStore(core.Solana)
	auth := NewAuthenticator(core.Solana, sessions, zerolog.Nop())

	session, err := auth.Authenticate(ctx, signer, signer.Address())
	require.NoError(t, err)

	assert.Equal(t, signer.Address(), session.Address)
	assert.True(t, strings.HasPrefix(session.Message, "Sign this message to authenticate with Tutorial Platform using your Solana wallet."))
	assert.True(t, verifier.NewEd25519Verifier().Verify(session, time.Now()))
	assert.Equal(t, session, requireStored(t, sessions))
}

func TestAuthenticateOverwrites(t *testing.T) {
	ctx := context.Background()
	first, err := wallet.GenerateEthereumKeySigner()
	require.NoError(t, err)
	second, err := wallet.GenerateEthereumKeySigner()
	require.NoError(t, err)

	sessions := newSessionStore(core.Ethereum)
	auth := NewAuthenticator(core.Ethereum, sessions, zerolog.Nop())

	_, err = auth.Authenticate(ctx, first, first.Address())
	require.NoError(t, err)
	latest, err := auth.Authenticate(ctx, second, second.Address())
	require.NoError(t, err)

	assert.Equal(t, latest, requireStored(t, sessions))
}

func TestAuthenticateFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider func() providerFunc
		rejected bool
		target   error
	}{
		{
			name: "user rejects",
			provider: func() providerFunc {
				return func(context.Context, string, []byte) ([]byte, error) { return nil, core.ErrUserRejected }
			},
			rejected: true,
			target:   core.ErrUserRejected,
		},
		{
			name: "wallet unavailable",
			provider: func() providerFunc {
				return func(context.Context, string, []byte) ([]byte, error) {
					return nil, core.ErrProviderUnavailable
				}
			},
			target: core.ErrProviderUnavailable,
		},
		{
			name: "empty signature",
			provider: func() providerFunc {
				return func(context.Context, string, []byte) ([]byte, error) { return []byte{}, nil }
			},
			target: core.ErrProviderUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := newSessionStore(core.Ethereum)
			auth := NewAuthenticator(core.Ethereum, sessions, zerolog.Nop())

			_, err := auth.Authenticate(context.Background(), tt.provider(), "0xAbC")

			var authErr *core.AuthenticationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.rejected, authErr.Rejected())
			assert.ErrorIs(t, err, tt.target)
			assert.NotEmpty(t, authErr.Reason)

			_, err = sessions.Get(context.Background())
			assert.ErrorIs(t, err, core.ErrNoSession)
		})
	}
}

func TestAuthenticateWithoutProvider(t *testing.T) {
	auth := NewAuthenticator(core.Ethereum, newSessionStore(core.Ethereum), zerolog.Nop())

	_, err := auth.Authenticate(context.Background(), nil, "0xabc")

	var authErr *core.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, core.ErrProviderUnavailable)
	assert.False(t, authErr.Rejected())
}

func TestAuthenticateWaitsForWallet(t *testing.T) {
	in, out := io.Pipe()
	defer in.Close()
	prompt := wallet.NewPromptSigner(core.Ethereum, in, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	auth := NewAuthenticator(core.Ethereum, newSessionStore(core.Ethereum), zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := auth.Authenticate(ctx, prompt, "0xabc")
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("returned before the wallet answered: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	err := <-done

	var authErr *core.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, authErr.Rejected())
	assert.True(t, errors.Is(err, context.Canceled))
	_ = out.Close()
}

func TestCurrentEvictsExpiredSession(t *testing.T) {
	ctx := context.Background()
	signer, err := wallet.GenerateEthereumKeySigner()
	require.NoError(t, err)

	clk := newClock(issuedAt)
	sessions := newSessionStore(core.Ethereum)
	auth := NewAuthenticator(core.Ethereum, sessions, zerolog.Nop(), WithClock(clk.Now))

	_, err = auth.Current(ctx)
	assert.ErrorIs(t, err, core.ErrNoSession)

	session, err := auth.Authenticate(ctx, signer, signer.Address())
	require.NoError(t, err)

	clk.Set(session.Expiry())
	current, err := auth.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, current)

	clk.Set(session.Expiry().Add(time.Millisecond))
	_, err = auth.Current(ctx)
	assert.ErrorIs(t, err, core.ErrNoSession)

	_, err = sessions.Get(ctx)
	assert.ErrorIs(t, err, core.ErrNoSession)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	signer, err := wallet.GenerateEd25519KeySigner()
	require.NoError(t, err)

	sessions := newSessionStore(core.Solana)
	auth := NewAuthenticator(core.Solana, sessions, zerolog.Nop())

	_, err = auth.Authenticate(ctx, signer, signer.Address())
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx))

	_, err = auth.Current(ctx)
	assert.ErrorIs(t, err, core.ErrNoSession)
	require.NoError(t, auth.Logout(ctx))
}

func TestAuthenticateRecordsMetrics(t *testing.T) {
	_, m := metrics.NewRegistry()
	signer, err := wallet.GenerateEthereumKeySigner()
	require.NoError(t, err)

	auth := NewAuthenticator(core.Ethereum, newSessionStore(core.Ethereum), zerolog.Nop(), WithMetrics(m))

	_, err = auth.Authenticate(context.Background(), signer, signer.Address())
	require.NoError(t, err)
	_, err = auth.Authenticate(context.Background(), nil, signer.Address())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Authentications.WithLabelValues("ethereum", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Authentications.WithLabelValues("ethereum", "error")))
}
