package bootstrap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-condo-client/apiclient"
	"github.com/jrsteele09/go-condo-client/internal/bootstrap"
	"github.com/jrsteele09/go-condo-client/internal/config"
	"github.com/jrsteele09/go-condo-client/internal/logging"
	"github.com/jrsteele09/go-condo-client/sessions/filerepo"
	"github.com/jrsteele09/go-condo-client/sessions/sqliterepo"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/stretchr/testify/require"
)

func TestFileStorageIsTheDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FOLDER", dir)
	t.Setenv("CONDO_SESSION_STORE", "")
	t.Setenv("CONDO_API_URL", "http://api.test:8000/")
	ctx := context.Background()

	app, err := bootstrap.New(ctx, config.New(), logging.Nop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, app.Close()) })

	repo, ok := app.Repo.(*filerepo.Repo)
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "auth-storage.json"), repo.Path())
	require.Equal(t, "http://api.test:8000/api/v1", app.Client.BaseURL())
	require.False(t, app.Store.Snapshot().IsAuthenticated)

	// A session written by one process is visible to the next.
	require.NoError(t, app.Store.Login(ctx, "access", "refresh", &users.User{ID: "u1"}))
	again, err := bootstrap.New(ctx, config.New(), logging.Nop(), nil)
	require.NoError(t, err)
	require.Equal(t, "refresh", again.Store.RefreshToken())
	require.Equal(t, "u1", again.Store.Snapshot().User.ID)
}

func TestSQLiteStorage(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FOLDER", dir)
	t.Setenv("CONDO_SESSION_STORE", "sqlite")

	navigator := apiclient.NavigatorFunc(func(context.Context, string) {})
	app, err := bootstrap.New(context.Background(), config.New(), logging.Nop(), navigator)
	require.NoError(t, err)

	_, ok := app.Repo.(*sqliterepo.Repo)
	require.True(t, ok)
	require.FileExists(t, filepath.Join(dir, "condo.db"))
	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
}

func TestUnreachableRedisFails(t *testing.T) {
	t.Setenv("CONDO_SESSION_STORE", "redis")
	t.Setenv("REDIS_URL", "127.0.0.1:1")

	_, err := bootstrap.New(context.Background(), config.New(), logging.Nop(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "session storage")
}

func TestHTTPClientSendsSessionToken(t *testing.T) {
	t.Setenv("FOLDER", t.TempDir())
	t.Setenv("CONDO_SESSION_STORE", "")
	ctx := context.Background()

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	app, err := bootstrap.New(ctx, config.New(), logging.Nop(), nil)
	require.NoError(t, err)
	hc := app.HTTPClient()

	_, err = hc.Get(srv.URL)
	require.Error(t, err, "no session yet")

	require.NoError(t, app.Store.Login(ctx, "access-1", "refresh-1", &users.User{ID: "u1"}))
	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	// The transport reads the store on every request.
	require.NoError(t, app.Store.SetTokens(ctx, "access-2", ""))
	resp, err = hc.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, []string{"Bearer access-1", "Bearer access-2"}, seen)
}
