// Package users wraps the /users endpoints used by the admin tools.
package users

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-condo-client/apiclient"
	model "github.com/jrsteele09/go-condo-client/users"
)

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func listQuery(p model.ListParams) url.Values {
	q := apiclient.PageParams{Page: p.Page, Limit: p.Limit, SortBy: p.SortBy, SortOrder: p.SortOrder}.Values(nil)
	if p.Role != "" {
		q.Set("role", string(p.Role))
	}
	if p.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*p.IsActive))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

func (s *Service) List(ctx context.Context, params model.ListParams) (*apiclient.Page[model.User], error) {
	var page apiclient.Page[model.User]
	if err := s.client.Get(ctx, "/users", listQuery(params), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	return s.userCall(ctx, http.MethodGet, "/users/"+id, nil)
}

func (s *Service) Create(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
	return s.userCall(ctx, http.MethodPost, "/users", in)
}

func (s *Service) Update(ctx context.Context, id string, in model.UpdateUserInput) (*model.User, error) {
	return s.userCall(ctx, http.MethodPut, "/users/"+id, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/users/"+id, nil)
}

func (s *Service) Activate(ctx context.Context, id string) (*model.User, error) {
	return s.userCall(ctx, http.MethodPut, "/users/"+id+"/activate", nil)
}

func (s *Service) Deactivate(ctx context.Context, id string) (*model.User, error) {
	return s.userCall(ctx, http.MethodPut, "/users/"+id+"/deactivate", nil)
}

// SetActive toggles the account through a plain update, for servers
// without the activate/deactivate routes.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*model.User, error) {
	return s.Update(ctx, id, model.UpdateUserInput{IsActive: &active})
}

// ResetPassword asks the server for a temporary password.
func (s *Service) ResetPassword(ctx context.Context, id string) (*model.ResetPasswordResponse, error) {
	var out model.ResetPasswordResponse
	if err := s.client.Put(ctx, "/users/"+id+"/reset-password", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPassword sets a password chosen by the administrator.
func (s *Service) SetPassword(ctx context.Context, id, newPassword string) error {
	return s.client.Put(ctx, "/users/"+id+"/reset-password", map[string]string{"new_password": newPassword}, nil)
}

func (s *Service) userCall(ctx context.Context, method, path string, body any) (*model.User, error) {
	req, err := apiclient.NewJSONRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := s.client.Do(ctx, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
