package config

import "time"

// MockAPIConfig drives the token lifetimes of the development mock server.
type MockAPIConfig interface {
	GetJWTSecret() string
	GetRefreshTokenLength() int
	GetDefaultAccessTokenExpiry() time.Duration
	GetDefaultRefreshTokenExpiry() time.Duration
}

type MockAPI struct{}

var _ MockAPIConfig = MockAPI{}

func (MockAPI) GetJWTSecret() string {
	return GetEnv("MOCKAPI_JWT_SECRET", "dev-secret-change-me")
}

func (MockAPI) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

func (MockAPI) GetDefaultAccessTokenExpiry() time.Duration {
	return GetEnvDuration("MOCKAPI_ACCESS_TOKEN_TTL", 15*time.Minute)
}

func (MockAPI) GetDefaultRefreshTokenExpiry() time.Duration {
	return 7 * 24 * time.Hour // 7 days
}
