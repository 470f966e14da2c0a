package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/layer-3/tutorauth/adapters/store"
	"github.com/layer-3/tutorauth/adapters/verifier"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.UnixMilli(1700000000000)

// providerFunc adapts a function to ports.SignatureProvider
type providerFunc func(ctx context.Context, address string, message []byte) ([]byte, error)

func (f providerFunc) SignMessage(ctx context.Context, address string, message []byte) ([]byte, error) {
	return f(ctx, address, message)
}

// verifierFunc adapts a function to ports.Verifier
type verifierFunc func(session core.Session, now time.Time) bool

func (f verifierFunc) Verify(session core.Session, now time.Time) bool {
	return f(session, now)
}

// clock is a settable time source
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(at time.Time) *clock {
	return &clock{now: at}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

func newSessionStore(scheme core.Scheme) ports.SessionStore {
	return store.NewDualStore(scheme, store.NewMemoryStore(), nil, zerolog.Nop())
}

func strictVerifiers() map[string]ports.Verifier {
	return map[string]ports.Verifier{
		core.Ethereum.Name: verifier.NewRecoverVerifier(),
		core.Solana.Name:   verifier.NewEd25519Verifier(),
	}
}

// acceptAll trusts any presented address; used where ownership, not
// signatures, is under test
func acceptAll() map[string]ports.Verifier {
	accept := verifierFunc(func(core.Session, time.Time) bool { return true })
	return map[string]ports.Verifier{
		core.Ethereum.Name: accept,
		core.Solana.Name:   accept,
	}
}

func credentials(scheme core.Scheme, address string) *core.Credentials {
	return &core.Credentials{
		Scheme: scheme,
		Session: core.NewSession(address, "0x00", scheme.BuildMessage(address, issuedAt), issuedAt),
	}
}

func requireStored(t *testing.T, s ports.SessionStore) core.Session {
	t.Helper()
	session, err := s.Get(context.Background())
	require.NoError(t, err)
	return session
}
