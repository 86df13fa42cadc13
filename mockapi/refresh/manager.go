package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-condo-client/internal/config"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager creates, validates and rotates refresh tokens. Each user holds at
// most one refresh token; issuing a new one revokes the previous.
type Manager struct {
	repo   Repo
	config config.MockAPIConfig
	mu     sync.Mutex
}

func NewManager(repo Repo, cfg config.MockAPIConfig) *Manager {
	return &Manager{
		repo:   repo,
		config: cfg,
	}
}

// Create issues a new refresh token for the user.
func (m *Manager) Create(userID, tenantID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(userID, tenantID)
}

func (m *Manager) create(userID, tenantID string) (string, error) {
	if existing, err := m.repo.GetByUserID(userID); err == nil && existing != nil {
		if err := m.repo.Delete(existing.Token); err != nil {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	token := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:    token,
		UserID:   userID,
		TenantID: tenantID,
		Iat:      NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return token, nil
}

// Rotate consumes token and issues its replacement. Unknown, already used and
// expired tokens fail with ErrInvalidRefreshToken.
func (m *Manager) Rotate(token string) (*StoredRefreshToken, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rt, err := m.repo.Get(token)
	if err != nil {
		return nil, "", errs.ErrInvalidRefreshToken
	}
	if m.IsExpired(rt) {
		_ = m.repo.Delete(token)
		return nil, "", fmt.Errorf("%w: expired", errs.ErrInvalidRefreshToken)
	}

	next, err := m.create(rt.UserID, rt.TenantID)
	if err != nil {
		return nil, "", err
	}
	return rt, next, nil
}

// RevokeAll drops every refresh token.
func (m *Manager) RevokeAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo.DeleteAll()
}

func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.config.GetDefaultRefreshTokenExpiry()
}
