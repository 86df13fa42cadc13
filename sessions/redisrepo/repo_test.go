package redisrepo_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-condo-client/sessions"
	"github.com/jrsteele09/go-condo-client/sessions/redisrepo"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestKeyNamespacing(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	require.Equal(t, "condo:auth-storage", redisrepo.New(client, "").Key())
	require.Equal(t, "condo:admin:auth-storage", redisrepo.New(client, "admin").Key())
}

func TestRedisRepo(t *testing.T) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()

	repo, err := redisrepo.Dial(ctx, addr, os.Getenv("REDIS_PASSWORD"), "test-"+uuid.NewString())
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, sessions.ErrNotFound)

	in := &sessions.Session{
		User:            &users.User{ID: "u1", Email: "a@b.com", Role: users.RoleAdmin},
		AccessToken:     "tok1",
		RefreshToken:    "ref1",
		IsAuthenticated: true,
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, in, out)
}
