package mockapi

import (
	"fmt"
	"sync/atomic"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-condo-client/internal/config"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// accessClaims is what the mock server puts in its access tokens. Generation
// lets tests invalidate every outstanding token at once.
type accessClaims struct {
	jwtlib.RegisteredClaims
	Role       string `json:"role"`
	Tenant     string `json:"tenant"`
	Type       string `json:"type"`
	Generation int64  `json:"gen"`
}

// tokenCreator signs and verifies HS256 access tokens.
type tokenCreator struct {
	config     config.MockAPIConfig
	secret     []byte
	generation atomic.Int64
}

func newTokenCreator(cfg config.MockAPIConfig) *tokenCreator {
	return &tokenCreator{config: cfg, secret: []byte(cfg.GetJWTSecret())}
}

func (c *tokenCreator) CreateAccessToken(user *users.User) (string, error) {
	now := NowTimeFunc()
	claims := accessClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.config.GetDefaultAccessTokenExpiry())),
			ID:        uuid.New().String(),
		},
		Role:       string(user.Role),
		Tenant:     user.TenantID,
		Type:       "access",
		Generation: c.generation.Load(),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and generation of an access token.
func (c *tokenCreator) Verify(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(*jwtlib.Token) (any, error) {
		return c.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidToken, err)
	}
	if claims.Type != "access" {
		return nil, fmt.Errorf("%w: not an access token", errs.ErrInvalidToken)
	}
	if claims.Generation < c.generation.Load() {
		return nil, errs.ErrTokenExpired
	}
	return claims, nil
}

// expireAll invalidates every token issued so far.
func (c *tokenCreator) expireAll() {
	c.generation.Add(1)
}
