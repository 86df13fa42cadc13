package config

import "path/filepath"

type StorageBackend string

const (
	FileStorage   StorageBackend = "file"
	SQLiteStorage StorageBackend = "sqlite"
	RedisStorage  StorageBackend = "redis"
)

// StorageConfig selects where the persisted session lives.
type StorageConfig interface {
	GetSessionStore() StorageBackend
	GetSessionFile() string
	GetSQLitePath() string
	GetRedisURL() string
	GetRedisPassword() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetSessionStore() StorageBackend {
	switch b := StorageBackend(GetEnv("CONDO_SESSION_STORE", string(FileStorage))); b {
	case SQLiteStorage, RedisStorage:
		return b
	default:
		return FileStorage
	}
}

func (Storage) GetSessionFile() string {
	return filepath.Join(EnvVars{}.GetDataFolder(), "auth-storage.json")
}

func (Storage) GetSQLitePath() string {
	return filepath.Join(EnvVars{}.GetDataFolder(), "condo.db")
}

func (Storage) GetRedisURL() string {
	return GetEnv("REDIS_URL", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}
