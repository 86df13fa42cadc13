// Package ai wraps the assistant endpoints: stored conversations for the
// admin tools and the document question answering used by residents.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-condo-client/apiclient"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
)

const defaultMaxChunks = 5

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Role           Role   `json:"role"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

type Conversation struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenant_id"`
	UserID        string `json:"user_id"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	MessageCount  int    `json:"message_count"`
	LastMessageAt string `json:"last_message_at"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type SendMessageInput struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content"`
}

type SendMessageResponse struct {
	Message          Message `json:"message"`
	AssistantMessage Message `json:"assistant_message"`
	ConversationID   string  `json:"conversation_id"`
}

type Source struct {
	Filename   string `json:"filename"`
	Page       int    `json:"page,omitempty"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
}

type Answer struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence,omitempty"`
}

type askRequest struct {
	Question  string `json:"question"`
	MaxChunks int    `json:"max_chunks"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Conversations(ctx context.Context) ([]Conversation, error) {
	var page apiclient.Page[Conversation]
	if err := s.client.Get(ctx, "/ai/conversations", nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) Conversation(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	if err := s.client.Get(ctx, "/ai/conversations/"+id, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	var page apiclient.Page[Message]
	if err := s.client.Get(ctx, "/ai/conversations/"+conversationID+"/messages", nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) CreateConversation(ctx context.Context, title string) (*Conversation, error) {
	body := map[string]string{}
	if title != "" {
		body["title"] = title
	}
	var c Conversation
	if err := s.client.Post(ctx, "/ai/conversations", body, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SendMessage posts to a conversation; an empty ConversationID starts a new one.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageResponse, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("message content is required: %w", errs.ErrInvalidRequest)
	}
	var out SendMessageResponse
	if err := s.client.Post(ctx, "/ai/chat", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ask sends a one-off question answered from the condominium's documents.
// maxChunks <= 0 uses the server's usual 5.
func (s *Service) Ask(ctx context.Context, question string, maxChunks int) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is required: %w", errs.ErrInvalidRequest)
	}
	if maxChunks <= 0 {
		maxChunks = defaultMaxChunks
	}
	var out Answer
	if err := s.client.Post(ctx, "/ai/chat", askRequest{Question: question, MaxChunks: maxChunks}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) DeleteConversation(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/ai/conversations/"+id, nil)
}

func (s *Service) ArchiveConversation(ctx context.Context, id string) error {
	return s.client.Put(ctx, "/ai/conversations/"+id+"/archive", nil, nil)
}

// Usage returns the caller's usage statistics as sent by the server.
func (s *Service) Usage(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := s.client.Get(ctx, "/ai/usage", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
