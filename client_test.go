package tutorauth

import (
	"context"
	"net/http/cookiejar"
	"testing"

	"github.com/layer-3/tutorauth/adapters/store"
	"github.com/layer-3/tutorauth/adapters/wallet"
	"github.com/layer-3/tutorauth/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLoginAndLogout(t *testing.T) {
	ctx := context.Background()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	cookies, err := store.NewJarCookieStore(jar, "http://tutorial.test", "")
	require.NoError(t, err)

	c, err := New(Options{
		Scheme:     core.Solana,
		Persistent: store.NewMemoryStore(),
		Cookies:    cookies,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	assert.Equal(t, core.Solana, c.Scheme())

	_, err = c.Session(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	signer, err := wallet.GenerateEd25519KeySigner()
	require.NoError(t, err)

	session, err := c.Login(ctx, signer, signer.Address())
	require.NoError(t, err)

	current, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, current)

	_, err = cookies.Get(ctx, core.Solana.StorageKey)
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Session(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.True(t, NeedsReauthentication(err))
}

func TestClientDefaults(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	c, err := New(Options{Persistent: store.NewMemoryStore()})
	require.NoError(t, err)
	assert.Equal(t, core.Ethereum, c.Scheme())
}
