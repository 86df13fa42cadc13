package sqliterepo_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-condo-client/sessions"
	"github.com/jrsteele09/go-condo-client/sessions/sqliterepo"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRepo(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "condo.db")

	repo, err := sqliterepo.Open(ctx, path)
	require.NoError(t, err)

	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, sessions.ErrNotFound)

	first := &sessions.Session{
		User:            &users.User{ID: "u1", Email: "a@b.com", Role: users.RoleEmployee},
		AccessToken:     "tok1",
		RefreshToken:    "ref1",
		IsAuthenticated: true,
	}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, &sessions.Session{}))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Close())

	reopened, err := sqliterepo.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	out, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, first, out)
}
