package mockapi

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/users"
	"golang.org/x/crypto/bcrypt"
)

type storedUser struct {
	user         users.User
	passwordHash []byte
}

// userRepo is the mock server's account store, keyed by ID with an email index.
type userRepo struct {
	users    map[string]*storedUser
	emailIDs map[string]string // lower-cased email to user id
	lock     sync.RWMutex
}

func newUserRepo() *userRepo {
	return &userRepo{
		users:    make(map[string]*storedUser),
		emailIDs: make(map[string]string),
	}
}

// Upsert stores user. A non-empty password replaces the stored hash.
func (r *userRepo) Upsert(user users.User, password string) (users.User, error) {
	var hash []byte
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			return users.User{}, err
		}
		hash = h
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	existing, ok := r.users[user.ID]
	if ok && hash == nil {
		hash = existing.passwordHash
	}
	if ok && !strings.EqualFold(existing.user.Email, user.Email) {
		delete(r.emailIDs, strings.ToLower(existing.user.Email))
	}
	r.users[user.ID] = &storedUser{user: user, passwordHash: hash}
	r.emailIDs[strings.ToLower(user.Email)] = user.ID
	return user, nil
}

func (r *userRepo) Delete(id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	su, ok := r.users[id]
	if !ok {
		return errs.ErrUserNotFound
	}
	delete(r.emailIDs, strings.ToLower(su.user.Email))
	delete(r.users, id)
	return nil
}

func (r *userRepo) GetByID(id string) (users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	su, ok := r.users[id]
	if !ok {
		return users.User{}, errs.ErrUserNotFound
	}
	return su.user, nil
}

// Authenticate checks the email and password and returns the account.
func (r *userRepo) Authenticate(email, password string) (users.User, error) {
	r.lock.RLock()
	su, ok := r.users[r.emailIDs[strings.ToLower(strings.TrimSpace(email))]]
	r.lock.RUnlock()

	if !ok || su.passwordHash == nil {
		return users.User{}, errs.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(su.passwordHash, []byte(password)); err != nil {
		return users.User{}, errs.ErrInvalidCredentials
	}
	if !su.user.IsActive {
		return users.User{}, errs.ErrUserInactive
	}
	return su.user, nil
}

// List returns the tenant's users matching the filter, ordered by email.
func (r *userRepo) List(tenantID string, match func(users.User) bool) []users.User {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]users.User, 0, len(r.users))
	for _, su := range r.users {
		if tenantID != "" && su.user.TenantID != tenantID {
			continue
		}
		if match != nil && !match(su.user) {
			continue
		}
		out = append(out, su.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}
