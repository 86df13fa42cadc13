package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-condo-client/apiclient"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/internal/logging"
	"github.com/jrsteele09/go-condo-client/internal/utils"
	"github.com/jrsteele09/go-condo-client/mockapi"
	"github.com/jrsteele09/go-condo-client/mockapi/mockapitest"
	"github.com/jrsteele09/go-condo-client/services/auth"
	"github.com/jrsteele09/go-condo-client/sessions"
	"github.com/jrsteele09/go-condo-client/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func TestSignInPersistsAndSignOutClears(t *testing.T) {
	env := mockapitest.Start(t)
	ctx := context.Background()

	u := env.SignIn(t, mockapi.SeedResident)
	require.Equal(t, mockapi.SeedResident.User.Email, u.Email)
	require.Contains(t, string(env.Repo.Raw()), `"isAuthenticated":true`)

	// A second store over the same repo picks the session up.
	restored, err := sessions.NewStore(ctx, env.Repo, logging.Nop())
	require.NoError(t, err)
	require.Equal(t, env.Store.AccessToken(), restored.AccessToken())
	require.Equal(t, u.ID, restored.Snapshot().User.ID)

	require.NoError(t, env.Auth.SignOut(ctx))
	snap := env.Store.Snapshot()
	require.False(t, snap.IsAuthenticated)
	require.Empty(t, snap.RefreshToken)
	require.Contains(t, string(env.Repo.Raw()), `"isAuthenticated":false`)
}

func TestMe(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedEmployee)

	me, err := env.Auth.Me(context.Background())
	require.NoError(t, err)
	require.True(t, me.IsEmployee())
}

func TestUpdateProfileUpdatesSessionUser(t *testing.T) {
	env := mockapitest.Start(t)
	u := env.SignIn(t, mockapi.SeedResident)

	updated, err := env.Auth.UpdateProfile(context.Background(), u.ID, auth.UpdateProfileInput{
		FullName: utils.Ptr("Rui R. Resident"),
		Phone:    utils.Ptr("+55 11 99999-0000"),
	})
	require.NoError(t, err)
	require.Equal(t, "Rui R. Resident", updated.FullName)
	require.Equal(t, "Rui R. Resident", env.Store.Snapshot().User.FullName)
	require.Equal(t, "+55 11 99999-0000", env.Store.Snapshot().User.Phone)
}

func TestLoginRequiresCredentials(t *testing.T) {
	env := mockapitest.Start(t)

	_, err := env.Auth.Login(context.Background(), "  ", "secret")
	require.ErrorIs(t, err, errs.ErrInvalidRequest)
	_, err = env.Auth.Login(context.Background(), "a@b.com", "")
	require.ErrorIs(t, err, errs.ErrInvalidRequest)
	require.Equal(t, 0, env.API.Hits("POST "+mockapi.RouteAuthLogin))
}

// A 401 from the login endpoint means bad credentials; it must not start a
// refresh even while an older session is installed.
func TestLoginSendsPasswordFormAndSkipsRefresh(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "ana@condo.test", r.FormValue("username"))
		require.Equal(t, "wrong", r.FormValue("password"))
		require.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshes.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store, err := sessions.NewStore(context.Background(), repofakes.NewFakeSessionRepo(), logging.Nop())
	require.NoError(t, err)
	svc := auth.NewService(apiclient.New(srv.URL+"/api/v1", store))

	_, err = svc.Login(context.Background(), " ana@condo.test ", "wrong")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	require.Contains(t, err.Error(), "Incorrect email or password")
	require.Equal(t, int32(0), refreshes.Load())
}

func TestSignInLeavesStoreUntouchedOnFailure(t *testing.T) {
	env := mockapitest.Start(t)

	_, err := env.Auth.SignIn(context.Background(), mockapi.SeedAdmin.User.Email, "bad")
	require.Error(t, err)
	require.Equal(t, 0, env.Repo.Saves())
	require.Equal(t, 0, env.API.Hits("GET "+mockapi.RouteUsersMe))
}
