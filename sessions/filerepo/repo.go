// Package filerepo persists the session as a JSON file on local disk.
package filerepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-condo-client/sessions"
)

var _ sessions.Repo = (*Repo)(nil)

type Repo struct {
	path string
}

// New returns a repo writing to path. The parent directory is created on first save.
func New(path string) *Repo {
	return &Repo{path: path}
}

func (r *Repo) Path() string {
	return r.path
}

func (r *Repo) Load(_ context.Context) (*sessions.Session, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, sessions.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read session file %s: %w", r.path, err)
	}
	s, err := sessions.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("session file %s: %w", r.path, err)
	}
	return &s, nil
}

// Save writes to a temp file and renames it over the target so a crash never
// leaves a half-written session behind.
func (r *Repo) Save(_ context.Context, session *sessions.Session) error {
	b, err := sessions.Marshal(*session)
	if err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".auth-storage-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
