// Package mockapitest starts a seeded mock API and a client wired to it.
package mockapitest

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-condo-client/apiclient"
	"github.com/jrsteele09/go-condo-client/internal/config"
	"github.com/jrsteele09/go-condo-client/internal/logging"
	"github.com/jrsteele09/go-condo-client/mockapi"
	"github.com/jrsteele09/go-condo-client/services/auth"
	"github.com/jrsteele09/go-condo-client/sessions"
	"github.com/jrsteele09/go-condo-client/sessions/repofakes"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type Env struct {
	API     *mockapi.Server
	HTTP    *httptest.Server
	Repo    *repofakes.FakeSessionRepo
	Store   *sessions.Store
	Client  *apiclient.Client
	Metrics *apiclient.Metrics
	Auth    *auth.Service

	navigations atomic.Int32
}

// Start serves a seeded mock API for the duration of the test.
func Start(t testing.TB, opts ...mockapi.Option) *Env {
	t.Helper()

	api, err := mockapi.New(config.MockAPI{}, opts...)
	require.NoError(t, err)

	e := &Env{API: api, HTTP: httptest.NewServer(api), Repo: repofakes.NewFakeSessionRepo()}
	t.Cleanup(e.HTTP.Close)

	e.Store, err = sessions.NewStore(context.Background(), e.Repo, logging.Nop())
	require.NoError(t, err)
	e.Metrics = apiclient.NewMetrics(prometheus.NewRegistry())
	e.Client = apiclient.New(e.HTTP.URL+mockapi.APIPrefix, e.Store,
		apiclient.WithMetrics(e.Metrics),
		apiclient.WithNavigator(apiclient.NavigatorFunc(func(context.Context, string) {
			e.navigations.Add(1)
		})),
	)
	e.Auth = auth.NewService(e.Client)
	return e
}

// SignIn logs in as the seeded account and fails the test on error.
func (e *Env) SignIn(t testing.TB, seed mockapi.UserSeed) *users.User {
	t.Helper()
	u, err := e.Auth.SignIn(context.Background(), seed.User.Email, seed.Password)
	require.NoError(t, err)
	return u
}

// Navigations counts the forced logouts that reached the navigator.
func (e *Env) Navigations() int {
	return int(e.navigations.Load())
}
