package refresh

import (
	"sync"

	errs "github.com/jrsteele09/go-condo-client/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	tokens  map[string]*StoredRefreshToken
	userIDs map[string]string // user ID to token
	lock    sync.RWMutex
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		tokens:  make(map[string]*StoredRefreshToken),
		userIDs: make(map[string]string),
	}
}

func (r *InMemoryRepo) Upsert(rt *StoredRefreshToken) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.tokens[rt.Token] = rt
	r.userIDs[rt.UserID] = rt.Token
	return nil
}

func (r *InMemoryRepo) Delete(token string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	rt, ok := r.tokens[token]
	if !ok {
		return errs.ErrNotFound
	}
	if r.userIDs[rt.UserID] == token {
		delete(r.userIDs, rt.UserID)
	}
	delete(r.tokens, token)
	return nil
}

func (r *InMemoryRepo) Get(token string) (*StoredRefreshToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rt, ok := r.tokens[token]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return rt, nil
}

func (r *InMemoryRepo) GetByUserID(userID string) (*StoredRefreshToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	token, ok := r.userIDs[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return r.tokens[token], nil
}

func (r *InMemoryRepo) DeleteAll() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.tokens = make(map[string]*StoredRefreshToken)
	r.userIDs = make(map[string]string)
	return nil
}
