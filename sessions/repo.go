package sessions

import "context"

// Repo is durable storage for the single process-wide session.
type Repo interface {
	// Load returns the persisted session, or ErrNotFound if there is none
	Load(ctx context.Context) (*Session, error)

	// Save replaces the persisted session
	Save(ctx context.Context, session *Session) error
}
