package repofakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-condo-client/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps the serialised session in memory, so tests exercise
// the same encoding the real repos use.
type FakeSessionRepo struct {
	lock    sync.RWMutex
	data    []byte
	saves   int
	SaveErr error
	LoadErr error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (r *FakeSessionRepo) Load(_ context.Context) (*sessions.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	if r.data == nil {
		return nil, sessions.ErrNotFound
	}
	s, err := sessions.Unmarshal(r.data)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *FakeSessionRepo) Save(_ context.Context, session *sessions.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.SaveErr != nil {
		return r.SaveErr
	}
	b, err := sessions.Marshal(*session)
	if err != nil {
		return err
	}
	r.data = b
	r.saves++
	return nil
}

// Raw returns the bytes last written under sessions.StorageKey.
func (r *FakeSessionRepo) Raw() []byte {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]byte(nil), r.data...)
}

// Saves counts successful writes.
func (r *FakeSessionRepo) Saves() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.saves
}
