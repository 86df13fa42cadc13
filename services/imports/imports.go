// Package imports wraps the CSV bulk import endpoints.
package imports

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/go-condo-client/apiclient"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
)

type Type string

const (
	TypeUnits    Type = "units"
	TypeUsers    Type = "users"
	TypePayments Type = "payments"
	TypeMeters   Type = "meters"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type Job struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	UserID         string     `json:"user_id"`
	UploaderName   string     `json:"uploader_name,omitempty"`
	Type           Type       `json:"type"`
	Filename       string     `json:"filename"`
	TotalRows      int        `json:"total_rows"`
	ProcessedRows  int        `json:"processed_rows"`
	SuccessfulRows int        `json:"successful_rows"`
	FailedRows     int        `json:"failed_rows"`
	Status         Status     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	Errors         []RowError `json:"errors,omitempty"`
	CreatedAt      string     `json:"created_at"`
	CompletedAt    string     `json:"completed_at,omitempty"`
}

type Preview struct {
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context) ([]Job, error) {
	var page apiclient.Page[Job]
	if err := s.client.Get(ctx, "/imports", nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Job, error) {
	var j Job
	if err := s.client.Get(ctx, "/imports/"+id, nil, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// Preview parses the file server-side without importing it.
func (s *Service) Preview(ctx context.Context, filename string, r io.Reader) (*Preview, error) {
	if r == nil || filename == "" {
		return nil, fmt.Errorf("import file and filename are required: %w", errs.ErrInvalidRequest)
	}
	form := apiclient.NewMultipartForm().AddFile("file", filename, r)
	var p Preview
	if err := s.client.PostMultipart(ctx, "/imports/preview", form, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Upload starts an import job of the given type.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader, typ Type) (*Job, error) {
	if r == nil || filename == "" || typ == "" {
		return nil, fmt.Errorf("import file, filename and type are required: %w", errs.ErrInvalidRequest)
	}
	form := apiclient.NewMultipartForm().
		AddFile("file", filename, r).
		AddField("type", string(typ))
	var j Job
	if err := s.client.PostMultipart(ctx, "/imports/upload", form, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/imports/"+id, nil)
}
