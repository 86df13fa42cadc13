package sessions

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"golang.org/x/oauth2"
)

// TokenClaims is the subset of access-token claims the client cares about.
type TokenClaims struct {
	jwt.RegisteredClaims
	Role   string `json:"role,omitempty"`
	Tenant string `json:"tenant,omitempty"`
	Type   string `json:"type,omitempty"`
}

// ParseAccessToken decodes a JWT access token without verifying its
// signature. The client never holds the signing key; the result is only used
// for display and expiry hints.
func ParseAccessToken(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidToken, err)
	}
	return claims, nil
}

// AccessTokenClaims decodes the current access token.
func (s *Store) AccessTokenClaims() (*TokenClaims, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, errs.ErrNotAuthenticated
	}
	return ParseAccessToken(token)
}

// TokenSource exposes the store as an oauth2.TokenSource so it can back an
// oauth2.Transport. It never refreshes on its own.
func (s *Store) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: s}
}

type storeTokenSource struct {
	store *Store
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	snap := ts.store.Snapshot()
	if snap.AccessToken == "" {
		return nil, errs.ErrNotAuthenticated
	}
	tok := &oauth2.Token{
		AccessToken:  snap.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: snap.RefreshToken,
	}
	if claims, err := ParseAccessToken(snap.AccessToken); err == nil && claims.ExpiresAt != nil {
		tok.Expiry = claims.ExpiresAt.Time
	}
	return tok, nil
}

// ExpiresIn reports how long the current access token has left. ok is false
// when the token is absent or carries no expiry.
func (s *Store) ExpiresIn(now time.Time) (remaining time.Duration, ok bool) {
	claims, err := s.AccessTokenClaims()
	if err != nil || claims.ExpiresAt == nil {
		return 0, false
	}
	return claims.ExpiresAt.Time.Sub(now), true
}
