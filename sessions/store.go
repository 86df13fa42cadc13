package sessions

import (
	"context"
	"fmt"
	"sort"
	"sync"

	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/rs/zerolog"
)

// Store is the single source of truth for the authentication state. It is
// safe for concurrent use; every mutation is written through to the Repo
// before the mutator returns.
type Store struct {
	repo Repo
	log  zerolog.Logger

	mu    sync.RWMutex
	state Session

	subsMu sync.Mutex
	subs   map[int]func(Session)
	nextID int
}

// NewStore creates a store and rehydrates it from repo. A missing or
// unreadable persisted session leaves the store empty.
func NewStore(ctx context.Context, repo Repo, log zerolog.Logger) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("[sessions NewStore] repo is required")
	}
	s := &Store{
		repo: repo,
		log:  log.With().Str("component", "session-store").Logger(),
		subs: make(map[int]func(Session)),
	}

	persisted, err := repo.Load(ctx)
	switch {
	case errs.Is(err, ErrNotFound):
		s.log.Debug().Msg("no persisted session, starting empty")
	case err != nil:
		s.log.Warn().Err(err).Msg("failed to rehydrate session, starting empty")
	case persisted != nil:
		s.state = persisted.Clone()
		s.log.Debug().Bool("authenticated", s.state.IsAuthenticated).Msg("session rehydrated")
	}
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// AccessToken is a shortcut for Snapshot().AccessToken.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// RefreshToken is a shortcut for Snapshot().RefreshToken.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

// Login replaces the whole session after a successful credential exchange.
func (s *Store) Login(ctx context.Context, accessToken, refreshToken string, user *users.User) error {
	if accessToken == "" || refreshToken == "" || user == nil {
		return fmt.Errorf("[sessions Login] tokens and user are required: %w", errs.ErrInvalidRequest)
	}
	u := *user
	return s.mutate(ctx, "login", func(st *Session) {
		*st = Session{
			User:            &u,
			AccessToken:     accessToken,
			RefreshToken:    refreshToken,
			IsAuthenticated: true,
		}
	})
}

// Logout clears the session. Calling it on an empty session is a no-op apart
// from persisting the empty state again.
func (s *Store) Logout(ctx context.Context) error {
	return s.mutate(ctx, "logout", func(st *Session) {
		*st = Session{}
	})
}

// SetUser replaces the user record only.
func (s *Store) SetUser(ctx context.Context, user *users.User) error {
	var u *users.User
	if user != nil {
		copied := *user
		u = &copied
	}
	return s.mutate(ctx, "set-user", func(st *Session) {
		st.User = u
	})
}

// SetAccessToken replaces the access token only.
func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.mutate(ctx, "set-access-token", func(st *Session) {
		st.AccessToken = token
	})
}

// SetTokens installs a refreshed token pair. An empty refreshToken keeps the
// current one, for servers that do not rotate refresh tokens.
func (s *Store) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	return s.mutate(ctx, "set-tokens", func(st *Session) {
		st.AccessToken = accessToken
		if refreshToken != "" {
			st.RefreshToken = refreshToken
		}
	})
}

// RotateTokens installs a refreshed pair only if the session still holds
// previousRefresh. It reports false, without writing, when the session was
// logged out or replaced while the refresh was in flight.
func (s *Store) RotateTokens(ctx context.Context, previousRefresh, accessToken, refreshToken string) (bool, error) {
	applied := false
	err := s.mutateIf(ctx, "rotate-tokens", func(st *Session) bool {
		if st.RefreshToken == "" || st.RefreshToken != previousRefresh {
			return false
		}
		st.AccessToken = accessToken
		if refreshToken != "" {
			st.RefreshToken = refreshToken
		}
		applied = true
		return true
	})
	return applied, err
}

// Subscribe registers fn to receive a snapshot after every mutation. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

// mutate applies fn and persists the result. The save happens under the
// write lock so the persisted order always matches the mutation order. The
// in-memory state is kept even if the save fails.
func (s *Store) mutate(ctx context.Context, op string, fn func(*Session)) error {
	return s.mutateIf(ctx, op, func(st *Session) bool {
		fn(st)
		return true
	})
}

// mutateIf is mutate for changes that may decide not to apply; nothing is
// saved or published when fn returns false.
func (s *Store) mutateIf(ctx context.Context, op string, fn func(*Session) bool) error {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.state.Clone()
	err := s.repo.Save(ctx, &snapshot)
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Str("op", op).Msg("failed to persist session")
		err = fmt.Errorf("[sessions %s] failed to persist session: %w", op, err)
	} else {
		s.log.Debug().Str("op", op).Bool("authenticated", snapshot.IsAuthenticated).Msg("session updated")
	}

	s.notify(snapshot)
	return err
}

func (s *Store) notify(snapshot Session) {
	s.subsMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Session), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snapshot.Clone())
	}
}
