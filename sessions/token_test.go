package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/sessions"
	"github.com/jrsteele09/go-condo-client/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":    "u1",
		"role":   "admin",
		"tenant": "tenant-1",
		"exp":    exp.Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestParseAccessToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims, err := sessions.ParseAccessToken(signedToken(t, exp))
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "admin", claims.Role)
	require.Equal(t, "tenant-1", claims.Tenant)
	require.True(t, claims.ExpiresAt.Time.Equal(exp))
}

func TestParseAccessTokenRejectsOpaqueTokens(t *testing.T) {
	_, err := sessions.ParseAccessToken("not-a-jwt")
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, repofakes.NewFakeSessionRepo())

	_, err := store.TokenSource().Token()
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)

	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	access := signedToken(t, exp)
	require.NoError(t, store.Login(ctx, access, "ref1", testUser()))

	tok, err := store.TokenSource().Token()
	require.NoError(t, err)
	require.Equal(t, access, tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, "ref1", tok.RefreshToken)
	require.True(t, tok.Expiry.Equal(exp))
	require.True(t, tok.Valid())
}

func TestExpiresIn(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, repofakes.NewFakeSessionRepo())

	_, ok := store.ExpiresIn(time.Now())
	require.False(t, ok)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, store.Login(ctx, signedToken(t, now.Add(10*time.Minute)), "ref1", testUser()))
	remaining, ok := store.ExpiresIn(now)
	require.True(t, ok)
	require.Equal(t, 10*time.Minute, remaining)
}
