// Package notifications wraps the /notifications endpoints.
package notifications

import (
	"context"
	"net/url"
	"sort"
	"strconv"

	"github.com/jrsteele09/go-condo-client/apiclient"
)

type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeSystem  Type = "system"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Status string

const (
	StatusUnread   Status = "unread"
	StatusRead     Status = "read"
	StatusArchived Status = "archived"
)

// Notification covers both payload generations: newer servers send Status,
// older ones only IsRead.
type Notification struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"`
	UserID      string         `json:"user_id,omitempty"`
	Type        Type           `json:"type,omitempty"`
	Priority    Priority       `json:"priority,omitempty"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Status      Status         `json:"status,omitempty"`
	IsRead      bool           `json:"is_read,omitempty"`
	ActionURL   string         `json:"action_url,omitempty"`
	ActionLabel string         `json:"action_label,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"created_at"`
	ReadAt      string         `json:"read_at,omitempty"`
}

func (n Notification) Unread() bool {
	if n.Status != "" {
		return n.Status == StatusUnread
	}
	return !n.IsRead
}

type CreateInput struct {
	UserID      string         `json:"user_id,omitempty"`
	Type        Type           `json:"type"`
	Priority    Priority       `json:"priority"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	ActionURL   string         `json:"action_url,omitempty"`
	ActionLabel string         `json:"action_label,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// List returns the caller's notifications. unread filters on read state when non-nil.
func (s *Service) List(ctx context.Context, unread *bool) ([]Notification, error) {
	var q url.Values
	if unread != nil {
		q = url.Values{"unread": {strconv.FormatBool(*unread)}}
	}
	var page apiclient.Page[Notification]
	if err := s.client.Get(ctx, "/notifications", q, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, "/notifications/unread/count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Notification, error) {
	var n Notification
	if err := s.client.Get(ctx, "/notifications/"+id, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Create sends a notification (administrators only).
func (s *Service) Create(ctx context.Context, in CreateInput) (*Notification, error) {
	var n Notification
	if err := s.client.Post(ctx, "/notifications", in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id string) error {
	return s.client.Put(ctx, "/notifications/"+id+"/read", nil, nil)
}

func (s *Service) MarkAllAsRead(ctx context.Context) error {
	return s.client.Put(ctx, "/notifications/read-all", nil, nil)
}

func (s *Service) Archive(ctx context.Context, id string) error {
	return s.client.Put(ctx, "/notifications/"+id+"/archive", nil, nil)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/notifications/"+id, nil)
}

// Recent returns the n newest notifications.
func (s *Service) Recent(ctx context.Context, n int) ([]Notification, error) {
	all, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	// created_at is ISO-8601 from a single server clock, so string order is time order.
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}
