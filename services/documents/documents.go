// Package documents wraps the /documents endpoints.
package documents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-condo-client/apiclient"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
)

type Category string

const (
	CategoryContract       Category = "contract"
	CategoryInvoice        Category = "invoice"
	CategoryMeetingMinutes Category = "meeting_minutes"
	CategoryRegulation     Category = "regulation"
	CategoryReport         Category = "report"
	CategoryOther          Category = "other"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

type Document struct {
	ID           string   `json:"id"`
	TenantID     string   `json:"tenant_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	FilePath     string   `json:"file_path"`
	FileSize     int64    `json:"file_size"`
	FileType     string   `json:"file_type"`
	DocumentType string   `json:"document_type"`
	Category     Category `json:"category"`
	Status       Status   `json:"status"`
	UploadedBy   string   `json:"uploaded_by"`
	UploaderName string   `json:"uploader_name,omitempty"`
	IsPublic     bool     `json:"is_public"`
	Tags         []string `json:"tags,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

// UploadInput describes a new document. File is read once, when the request is built.
type UploadInput struct {
	Filename    string
	File        io.Reader
	Description string
	Category    Category
	IsPublic    bool
	Tags        []string
}

type UpdateInput struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *Category `json:"category,omitempty"`
	IsPublic    *bool     `json:"is_public,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Status      *Status   `json:"status,omitempty"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.list(ctx, "/documents")
}

func (s *Service) ListByCategory(ctx context.Context, category Category) ([]Document, error) {
	return s.list(ctx, "/documents/category/"+string(category))
}

func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	var d Document
	if err := s.client.Get(ctx, "/documents/"+id, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) Upload(ctx context.Context, in UploadInput) (*Document, error) {
	if in.File == nil || in.Filename == "" {
		return nil, fmt.Errorf("document file and filename are required: %w", errs.ErrInvalidRequest)
	}
	if in.Category == "" {
		in.Category = CategoryOther
	}

	form := apiclient.NewMultipartForm().
		AddFile("file", in.Filename, in.File).
		AddField("category", string(in.Category)).
		AddField("is_public", strconv.FormatBool(in.IsPublic))
	if in.Description != "" {
		form.AddField("description", in.Description)
	}
	if len(in.Tags) > 0 {
		form.AddField("tags", strings.Join(in.Tags, ","))
	}

	var d Document
	if err := s.client.PostMultipart(ctx, "/documents/upload", form, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Document, error) {
	var d Document
	if err := s.client.Put(ctx, "/documents/"+id, in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Download returns the file contents and the Content-Type the server sent.
func (s *Service) Download(ctx context.Context, id string) ([]byte, string, error) {
	req := apiclient.NewRequest(http.MethodGet, "/documents/"+id+"/download")
	req.Header = http.Header{"Accept": {"*/*"}}
	resp, err := s.client.DoRaw(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/documents/"+id, nil)
}

func (s *Service) Archive(ctx context.Context, id string) error {
	return s.client.Put(ctx, "/documents/"+id+"/archive", nil, nil)
}

func (s *Service) list(ctx context.Context, path string) ([]Document, error) {
	var page apiclient.Page[Document]
	if err := s.client.Get(ctx, path, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}
