package sessions_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jrsteele09/go-condo-client/internal/logging"
	"github.com/jrsteele09/go-condo-client/sessions"
	"github.com/jrsteele09/go-condo-client/sessions/repofakes"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/stretchr/testify/require"
)

func testUser() *users.User {
	return &users.User{
		ID:       "u1",
		Email:    "a@b.com",
		FullName: "Ana Souza",
		Role:     users.RoleAdmin,
		TenantID: "tenant-1",
		IsActive: true,
	}
}

func newStore(t *testing.T, repo sessions.Repo) *sessions.Store {
	t.Helper()
	store, err := sessions.NewStore(context.Background(), repo, logging.Nop())
	require.NoError(t, err)
	return store
}

func TestNewStoreStartsEmpty(t *testing.T) {
	store := newStore(t, repofakes.NewFakeSessionRepo())

	snap := store.Snapshot()
	require.Nil(t, snap.User)
	require.Empty(t, snap.AccessToken)
	require.Empty(t, snap.RefreshToken)
	require.False(t, snap.IsAuthenticated)
}

func TestNewStoreRequiresRepo(t *testing.T) {
	_, err := sessions.NewStore(context.Background(), nil, logging.Nop())
	require.Error(t, err)
}

func TestLoginPersistsAndRehydrates(t *testing.T) {
	ctx := context.Background()
	repo := repofakes.NewFakeSessionRepo()
	store := newStore(t, repo)

	require.NoError(t, store.Login(ctx, "tok1", "ref1", testUser()))

	rehydrated := newStore(t, repo)
	snap := rehydrated.Snapshot()
	require.Equal(t, "tok1", snap.AccessToken)
	require.Equal(t, "ref1", snap.RefreshToken)
	require.Equal(t, testUser(), snap.User)
	require.True(t, snap.IsAuthenticated)
}

func TestLogoutClearsPersistence(t *testing.T) {
	ctx := context.Background()
	repo := repofakes.NewFakeSessionRepo()
	store := newStore(t, repo)

	require.NoError(t, store.Login(ctx, "tok1", "ref1", testUser()))
	require.NoError(t, store.Logout(ctx))
	require.NoError(t, store.Logout(ctx))

	snap := newStore(t, repo).Snapshot()
	require.Equal(t, sessions.Session{}, snap)
}

func TestPersistedLayout(t *testing.T) {
	ctx := context.Background()
	repo := repofakes.NewFakeSessionRepo()
	store := newStore(t, repo)
	require.NoError(t, store.Logout(ctx))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(repo.Raw(), &raw))
	state := raw["state"].(map[string]any)
	require.Nil(t, state["user"])
	require.Nil(t, state["accessToken"])
	require.Nil(t, state["refreshToken"])
	require.Equal(t, false, state["isAuthenticated"])
	require.EqualValues(t, 0, raw["version"])

	require.NoError(t, store.Login(ctx, "tok1", "ref1", testUser()))
	require.NoError(t, json.Unmarshal(repo.Raw(), &raw))
	state = raw["state"].(map[string]any)
	require.Equal(t, "tok1", state["accessToken"])
	require.Equal(t, "ref1", state["refreshToken"])
	require.Equal(t, "a@b.com", state["user"].(map[string]any)["email"])
}

func TestLoginRequiresTokensAndUser(t *testing.T) {
	ctx := context.Background()
	repo := repofakes.NewFakeSessionRepo()
	store := newStore(t, repo)

	require.Error(t, store.Login(ctx, "", "ref1", testUser()))
	require.Error(t, store.Login(ctx, "tok1", "ref1", nil))
	require.False(t, store.Snapshot().IsAuthenticated)
	require.Zero(t, repo.Saves())
}

func TestSetUserLeavesTokens(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, repofakes.NewFakeSessionRepo())
	require.NoError(t, store.Login(ctx, "tok1", "ref1", testUser()))

	updated := testUser()
	updated.FullName = "Ana S. Lima"
	require.NoError(t, store.SetUser(ctx, updated))

	snap := store.Snapshot()
	require.Equal(t, "Ana S. Lima", snap.User.FullName)
	require.Equal(t, "tok1", snap.AccessToken)
	require.True(t, snap.IsAuthenticated)
}

func TestSetAccessTokenAndTokens(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, repofakes.NewFakeSessionRepo())
	require.NoError(t, store.Login(ctx, "tok1", "ref1", testUser()))

	require.NoError(t, store.SetAccessToken(ctx, "tok2"))
	require.Equal(t, "tok2", store.AccessToken())
	require.Equal(t, "ref1", store.RefreshToken())

	// A server that does not rotate refresh tokens returns an empty one.
	require.NoError(t, store.SetTokens(ctx, "tok3", ""))
	require.Equal(t, "tok3", store.AccessToken())
	require.Equal(t, "ref1", store.RefreshToken())

	require.NoError(t, store.SetTokens(ctx, "tok4", "ref4"))
	require.Equal(t, "tok4", store.AccessToken())
	require.Equal(t, "ref4", store.RefreshToken())
	require.True(t, store.Snapshot().IsAuthenticated)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, repofakes.NewFakeSessionRepo())
	user := testUser()
	require.NoError(t, store.Login(ctx, "tok1", "ref1", user))

	user.Email = "changed@b.com"
	snap := store.Snapshot()
	snap.User.Email = "also-changed@b.com"

	require.Equal(t, "a@b.com", store.Snapshot().User.Email)
}

func TestSaveFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	repo := repofakes.NewFakeSessionRepo()
	store := newStore(t, repo)
	repo.SaveErr = errors.New("disk full")

	err := store.Login(ctx, "tok1", "ref1", testUser())
	require.ErrorIs(t, err, repo.SaveErr)
	require.True(t, store.Snapshot().IsAuthenticated)
}

func TestUnreadablePersistedSessionStartsEmpty(t *testing.T) {
	repo := repofakes.NewFakeSessionRepo()
	repo.LoadErr = errors.New("corrupt")

	store := newStore(t, repo)
	require.False(t, store.Snapshot().IsAuthenticated)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, repofakes.NewFakeSessionRepo())

	var seen []sessions.Session
	cancel := store.Subscribe(func(s sessions.Session) {
		seen = append(seen, s)
	})

	require.NoError(t, store.Login(ctx, "tok1", "ref1", testUser()))
	require.NoError(t, store.SetAccessToken(ctx, "tok2"))
	cancel()
	require.NoError(t, store.Logout(ctx))

	require.Len(t, seen, 2)
	require.Equal(t, "tok1", seen[0].AccessToken)
	require.Equal(t, "tok2", seen[1].AccessToken)
}

func TestRotateTokens(t *testing.T) {
	ctx := context.Background()
	repo := repofakes.NewFakeSessionRepo()
	store := newStore(t, repo)
	require.NoError(t, store.Login(ctx, "tok1", "ref1", testUser()))

	applied, err := store.RotateTokens(ctx, "ref1", "tok2", "ref2")
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, "tok2", store.AccessToken())
	require.Equal(t, "ref2", store.RefreshToken())

	saves := repo.Saves()
	applied, err = store.RotateTokens(ctx, "ref1", "tok3", "ref3")
	require.NoError(t, err)
	require.False(t, applied, "stale refresh token must not overwrite a newer pair")
	require.Equal(t, "tok2", store.AccessToken())
	require.Equal(t, saves, repo.Saves())

	require.NoError(t, store.Logout(ctx))
	applied, err = store.RotateTokens(ctx, "ref2", "tok4", "ref4")
	require.NoError(t, err)
	require.False(t, applied, "a refresh finishing after logout must not revive the session")
	require.Empty(t, store.AccessToken())
}
