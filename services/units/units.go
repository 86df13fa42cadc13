// Package units wraps the /units endpoints.
package units

import (
	"context"

	"github.com/jrsteele09/go-condo-client/apiclient"
)

type UnitType string

const (
	TypeApartment  UnitType = "apartment"
	TypeHouse      UnitType = "house"
	TypeCommercial UnitType = "commercial"
)

type Status string

const (
	StatusOccupied Status = "occupied"
	StatusVacant   Status = "vacant"
)

type Unit struct {
	ID             string   `json:"id"`
	TenantID       string   `json:"tenant_id"`
	Number         string   `json:"number"`
	Type           UnitType `json:"type"`
	Area           float64  `json:"area"`
	Floor          string   `json:"floor,omitempty"`
	Block          string   `json:"block,omitempty"`
	Status         Status   `json:"status"`
	ResidentsCount int      `json:"residents_count"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

type CreateInput struct {
	Number string   `json:"number"`
	Type   UnitType `json:"type"`
	Area   float64  `json:"area"`
	Floor  string   `json:"floor,omitempty"`
	Block  string   `json:"block,omitempty"`
}

// UpdateInput leaves nil fields untouched.
type UpdateInput struct {
	Number *string   `json:"number,omitempty"`
	Type   *UnitType `json:"type,omitempty"`
	Area   *float64  `json:"area,omitempty"`
	Floor  *string   `json:"floor,omitempty"`
	Block  *string   `json:"block,omitempty"`
	Status *Status   `json:"status,omitempty"`
}

// ListParams filters GET /units.
type ListParams struct {
	apiclient.PageParams
	Type   UnitType
	Status Status
	Search string
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context, params ListParams) (*apiclient.Page[Unit], error) {
	q := params.PageParams.Values(nil)
	if params.Type != "" {
		q.Set("type", string(params.Type))
	}
	if params.Status != "" {
		q.Set("status", string(params.Status))
	}
	if params.Search != "" {
		q.Set("search", params.Search)
	}

	var page apiclient.Page[Unit]
	if err := s.client.Get(ctx, "/units", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Unit, error) {
	var u Unit
	if err := s.client.Get(ctx, "/units/"+id, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Unit, error) {
	var u Unit
	if err := s.client.Post(ctx, "/units", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Unit, error) {
	var u Unit
	if err := s.client.Put(ctx, "/units/"+id, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/units/"+id, nil)
}
