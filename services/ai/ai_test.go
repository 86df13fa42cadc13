package ai_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-condo-client/apiclient"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/mockapi"
	"github.com/jrsteele09/go-condo-client/mockapi/mockapitest"
	"github.com/jrsteele09/go-condo-client/services/ai"
	"github.com/stretchr/testify/require"
)

func TestAskCitesVisibleDocuments(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedResident)
	svc := ai.NewService(env.Client)
	ctx := context.Background()

	answer, err := svc.Ask(ctx, "When do quiet hours start?", 0)
	require.NoError(t, err)
	require.Equal(t, []ai.Source{{Filename: "internal-regulation.txt"}}, answer.Sources)
	require.Contains(t, answer.Answer, "internal-regulation.txt")

	// The minutes are private, so a resident gets nothing back.
	answer, err = svc.Ask(ctx, "Was the budget approved?", 0)
	require.NoError(t, err)
	require.Empty(t, answer.Sources)
	require.Zero(t, answer.Confidence)

	_, err = svc.Ask(ctx, "   ", 0)
	require.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestConversationLifecycle(t *testing.T) {
	env := mockapitest.Start(t)
	env.SignIn(t, mockapi.SeedAdmin)
	svc := ai.NewService(env.Client)
	ctx := context.Background()

	out, err := svc.SendMessage(ctx, ai.SendMessageInput{Content: "Summarise the meeting minutes please"})
	require.NoError(t, err)
	require.NotEmpty(t, out.ConversationID)
	require.Equal(t, ai.RoleUser, out.Message.Role)
	require.Equal(t, ai.RoleAssistant, out.AssistantMessage.Role)
	require.Contains(t, out.AssistantMessage.Content, "meeting-minutes.txt")

	_, err = svc.SendMessage(ctx, ai.SendMessageInput{ConversationID: out.ConversationID, Content: "Thanks"})
	require.NoError(t, err)

	msgs, err := svc.Messages(ctx, out.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	conv, err := svc.Conversation(ctx, out.ConversationID)
	require.NoError(t, err)
	require.Equal(t, 4, conv.MessageCount)
	require.Equal(t, "Summarise the meeting minutes please", conv.Title)

	empty, err := svc.CreateConversation(ctx, "")
	require.NoError(t, err)
	require.Equal(t, "New conversation", empty.Title)

	list, err := svc.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	usage, err := svc.Usage(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, usage["conversations"])
	require.EqualValues(t, 4, usage["messages"])

	require.NoError(t, svc.ArchiveConversation(ctx, empty.ID))
	list, err = svc.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.DeleteConversation(ctx, out.ConversationID))
	_, err = svc.Messages(ctx, out.ConversationID)
	require.True(t, apiclient.IsStatus(err, http.StatusNotFound))

	_, err = svc.SendMessage(ctx, ai.SendMessageInput{ConversationID: "missing", Content: "hi"})
	require.True(t, apiclient.IsStatus(err, http.StatusNotFound))
	_, err = svc.SendMessage(ctx, ai.SendMessageInput{})
	require.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestConversationsArePrivate(t *testing.T) {
	env := mockapitest.Start(t)
	svc := ai.NewService(env.Client)
	ctx := context.Background()

	env.SignIn(t, mockapi.SeedAdmin)
	c, err := svc.CreateConversation(ctx, "Budget")
	require.NoError(t, err)

	env.SignIn(t, mockapi.SeedResident)
	_, err = svc.Conversation(ctx, c.ID)
	require.True(t, apiclient.IsStatus(err, http.StatusNotFound))
	list, err := svc.Conversations(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
