package config

import "time"

type Config interface {
	EnvConfig
	ClientConfig
	StorageConfig
	MockAPIConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

// ClientConfig describes how the API client reaches the backend.
type ClientConfig interface {
	GetBaseURL() string
	GetAPIVersion() string
	GetLoginURL() string
	GetRefreshPath() string
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Client
	Storage
	MockAPI
}

func New() Config {
	return mainConfig{}
}
