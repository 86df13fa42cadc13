// Package redisrepo persists the session in Redis, for processes that share one login.
package redisrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-condo-client/sessions"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "condo:"

var _ sessions.Repo = (*Repo)(nil)

type Repo struct {
	client *redis.Client
	key    string
}

// New wraps an existing client. namespace separates sessions of different
// users or profiles sharing one Redis; it may be empty.
func New(client *redis.Client, namespace string) *Repo {
	key := keyPrefix + sessions.StorageKey
	if namespace != "" {
		key = keyPrefix + namespace + ":" + sessions.StorageKey
	}
	return &Repo{client: client, key: key}
}

// Dial connects to addr and checks the connection with a PING.
func Dial(ctx context.Context, addr, password, namespace string) (*Repo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return New(client, namespace), nil
}

func (r *Repo) Key() string {
	return r.key
}

func (r *Repo) Close() error {
	return r.client.Close()
}

func (r *Repo) Load(ctx context.Context) (*sessions.Session, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sessions.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s, err := sessions.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) Save(ctx context.Context, session *sessions.Session) error {
	b, err := sessions.Marshal(*session)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, b, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
