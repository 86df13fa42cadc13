package sessions

import (
	"encoding/json"
	"fmt"

	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/users"
)

// StorageKey is the namespaced key every Repo persists the session under.
const StorageKey = "auth-storage"

// ErrNotFound is returned by a Repo when nothing has been persisted yet.
var ErrNotFound = errs.ErrSessionNotFound

// Session is the authentication state of the process. Store hands out copies.
type Session struct {
	User            *users.User
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
}

// Clone returns a copy that shares nothing with s.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// persistedState mirrors the storage layout used by the web portals so a
// session written by one can be read by the other. Absent values are null.
type persistedState struct {
	User            *users.User `json:"user"`
	AccessToken     *string     `json:"accessToken"`
	RefreshToken    *string     `json:"refreshToken"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

type persistedEnvelope struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

// Marshal serialises the persisted subset of a session.
func Marshal(s Session) ([]byte, error) {
	env := persistedEnvelope{
		State: persistedState{
			User:            s.User,
			AccessToken:     optional(s.AccessToken),
			RefreshToken:    optional(s.RefreshToken),
			IsAuthenticated: s.IsAuthenticated,
		},
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return b, nil
}

// Unmarshal is the inverse of Marshal.
func Unmarshal(data []byte) (Session, error) {
	var env persistedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	s := Session{
		User:            env.State.User,
		IsAuthenticated: env.State.IsAuthenticated,
	}
	if env.State.AccessToken != nil {
		s.AccessToken = *env.State.AccessToken
	}
	if env.State.RefreshToken != nil {
		s.RefreshToken = *env.State.RefreshToken
	}
	return s, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
