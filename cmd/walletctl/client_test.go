package main

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tutorauth"
	"github.com/layer-3/tutorauth/adapters/repository"
	"github.com/layer-3/tutorauth/adapters/store"
	"github.com/layer-3/tutorauth/adapters/verifier"
	"github.com/layer-3/tutorauth/adapters/wallet"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
	"github.com/layer-3/tutorauth/service"
	httptransport "github.com/layer-3/tutorauth/transport/http"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	guard := service.NewGuard(map[string]ports.Verifier{
		core.Ethereum.Name: verifier.NewRecoverVerifier(),
		core.Solana.Name:   verifier.NewEd25519Verifier(),
	}, zerolog.Nop())
	catalog := service.NewCatalogService(guard, repository.NewMemoryRepository(), zerolog.Nop())

	srv := httptest.NewServer(httptransport.SetupRouter(httptransport.RouterConfig{
		Guard:   guard,
		Catalog: catalog,
		Logger:  zerolog.Nop(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := newAPI(t)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	cookies, err := store.NewJarCookieStore(jar, srv.URL, "")
	require.NoError(t, err)

	persistent := store.NewFileStore(t.TempDir() + "/sessions.json")
	auth, err := tutorauth.New(tutorauth.Options{Persistent: persistent, Cookies: cookies, Logger: zerolog.Nop()})
	require.NoError(t, err)
	api := newAPIClient(srv.URL, core.Ethereum, &http.Client{Jar: jar})

	signer, err := wallet.GenerateEthereumKeySigner()
	require.NoError(t, err)

	session, err := auth.Login(ctx, signer, signer.Address())
	require.NoError(t, err)

	id, err := api.Establish(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, session.Address, id.Address)

	me, err := api.Me(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, session.Address, me.Address)

	course, err := api.CreateCourse(ctx, session, core.CourseInput{Title: "From the CLI"})
	require.NoError(t, err)

	mine, err := api.ListCourses(ctx, session.Address)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, course.ID, mine[0].ID)

	require.NoError(t, api.DeleteCourse(ctx, session, course.ID))
	assert.ErrorIs(t, api.DeleteCourse(ctx, session, course.ID), core.ErrNotFound)

	require.NoError(t, auth.Logout(ctx))
	require.NoError(t, api.Logout(ctx))
	_, err = auth.Session(ctx)
	assert.ErrorIs(t, err, core.ErrNoSession)
}

func TestClientMapsErrors(t *testing.T) {
	ctx := context.Background()
	srv := newAPI(t)
	api := newAPIClient(srv.URL, core.Ethereum, srv.Client())

	forged := core.NewSession("0xabc", "0x00", "msg", time.Now())
	_, err := api.CreateCourse(ctx, forged, core.CourseInput{Title: "x"})
	assert.ErrorIs(t, err, core.ErrInvalidSession)
	assert.True(t, core.NeedsReauthentication(err))

	_, err = api.Establish(ctx, forged)
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}
