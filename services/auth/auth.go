// Package auth wraps the credential endpoints and ties them to the session store.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-condo-client/apiclient"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/users"
)

// UpdateProfileInput is the body of PUT /users/{id} for the signed-in user.
// nil fields are left untouched.
type UpdateProfileInput struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// Login exchanges credentials for a token pair. The API expects an OAuth2
// password form, so the email travels as "username". A 401 here means bad
// credentials and is returned as-is.
func (s *Service) Login(ctx context.Context, email, password string) (*apiclient.TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", errs.ErrInvalidRequest)
	}

	form := apiclient.NewMultipartForm().
		AddField("username", email).
		AddField("password", password)
	req, err := apiclient.NewMultipartRequest("/auth/login", form)
	if err != nil {
		return nil, err
	}
	req.SkipRefresh = true

	var pair apiclient.TokenPair
	if err := s.client.Do(ctx, req, &pair); err != nil {
		if apiclient.IsUnauthorized(err) {
			return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCredentials, err)
		}
		return nil, err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, fmt.Errorf("login response is missing tokens: %w", errs.ErrInvalidToken)
	}
	return &pair, nil
}

// Refresh calls the refresh endpoint directly. The client refreshes on its
// own after a 401; this is for callers that want to rotate eagerly.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*apiclient.TokenPair, error) {
	req, err := apiclient.NewJSONRequest(http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, err
	}
	req.SkipRefresh = true

	var pair apiclient.TokenPair
	if err := s.client.Do(ctx, req, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Me returns the signed-in user.
func (s *Service) Me(ctx context.Context) (*users.User, error) {
	var u users.User
	if err := s.client.Get(ctx, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile updates the user and, when it is the signed-in user, the
// copy held by the session.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*users.User, error) {
	var u users.User
	if err := s.client.Put(ctx, "/users/"+id, in, &u); err != nil {
		return nil, err
	}
	store := s.client.Store()
	if current := store.Snapshot().User; current != nil && current.ID == u.ID {
		if err := store.SetUser(ctx, &u); err != nil {
			return &u, err
		}
	}
	return &u, nil
}

// SignIn logs in, fetches the user with the new access token and only then
// installs the session, so a failure at any step leaves the store untouched.
func (s *Service) SignIn(ctx context.Context, email, password string) (*users.User, error) {
	pair, err := s.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	req := apiclient.NewRequest(http.MethodGet, "/users/me")
	req.Token = pair.AccessToken
	var u users.User
	if err := s.client.Do(ctx, req, &u); err != nil {
		return nil, fmt.Errorf("failed to load signed-in user: %w", err)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%s: %w", u.Email, errs.ErrUserInactive)
	}

	// A persistence failure still leaves the session signed in for this process.
	if err := s.client.Store().Login(ctx, pair.AccessToken, pair.RefreshToken, &u); err != nil {
		return &u, err
	}
	return &u, nil
}

// SignOut clears the session. The API keeps no server-side logout.
func (s *Service) SignOut(ctx context.Context) error {
	return s.client.Store().Logout(ctx)
}
