package config

import (
	"strings"
	"time"
)

const (
	apiURLEnvVar      = "CONDO_API_URL"
	apiVersionEnvVar  = "CONDO_API_VERSION"
	loginURLEnvVar    = "CONDO_LOGIN_URL"
	httpTimeoutEnvVar = "CONDO_HTTP_TIMEOUT"
)

type Client struct{}

var _ ClientConfig = Client{}

// GetBaseURL returns the API origin without the version prefix, e.g. "http://localhost:8000".
func (Client) GetBaseURL() string {
	return strings.TrimSuffix(GetEnv(apiURLEnvVar, "http://localhost:8000"), "/")
}

func (Client) GetAPIVersion() string {
	return GetEnv(apiVersionEnvVar, "/api/v1")
}

// GetLoginURL is where a user is sent once the session can no longer be refreshed.
func (Client) GetLoginURL() string {
	return GetEnv(loginURLEnvVar, "/login")
}

func (Client) GetRefreshPath() string {
	return "/auth/refresh"
}

func (Client) GetHTTPTimeout() time.Duration {
	return GetEnvDuration(httpTimeoutEnvVar, 30*time.Second)
}
