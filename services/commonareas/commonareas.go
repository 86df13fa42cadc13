// Package commonareas wraps the /common-areas endpoints.
package commonareas

import (
	"context"

	"github.com/jrsteele09/go-condo-client/apiclient"
)

// CommonArea is a bookable shared space. Opening hours are "HH:MM" strings.
type CommonArea struct {
	ID                  string `json:"id"`
	TenantID            string `json:"tenant_id"`
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	Capacity            int    `json:"capacity"`
	AvailableHoursStart string `json:"available_hours_start,omitempty"`
	AvailableHoursEnd   string `json:"available_hours_end,omitempty"`
	IsActive            bool   `json:"is_active"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

type CreateInput struct {
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	Capacity            int    `json:"capacity"`
	AvailableHoursStart string `json:"available_hours_start,omitempty"`
	AvailableHoursEnd   string `json:"available_hours_end,omitempty"`
}

type UpdateInput struct {
	Name                *string `json:"name,omitempty"`
	Description         *string `json:"description,omitempty"`
	Capacity            *int    `json:"capacity,omitempty"`
	AvailableHoursStart *string `json:"available_hours_start,omitempty"`
	AvailableHoursEnd   *string `json:"available_hours_end,omitempty"`
	IsActive            *bool   `json:"is_active,omitempty"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context) ([]CommonArea, error) {
	var page apiclient.Page[CommonArea]
	if err := s.client.Get(ctx, "/common-areas", nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*CommonArea, error) {
	var a CommonArea
	if err := s.client.Get(ctx, "/common-areas/"+id, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*CommonArea, error) {
	var a CommonArea
	if err := s.client.Post(ctx, "/common-areas", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*CommonArea, error) {
	var a CommonArea
	if err := s.client.Put(ctx, "/common-areas/"+id, in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/common-areas/"+id, nil)
}
