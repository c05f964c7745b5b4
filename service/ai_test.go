package service

import (
	"context"
	"testing"

	"chat-service/model"
	apperrors "chat-service/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// cannedCompleter replays a fixed reply and records the history it was
// given.
type cannedCompleter struct {
	reply string
	seen  []llms.MessageContent
	err   error
}

func (c *cannedCompleter) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	c.seen = messages
	if c.err != nil {
		return nil, c.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: c.reply}},
	}, nil
}

func TestAiSendPersistsPromptAndReply(t *testing.T) {
	db := newTestDB(t)
	llm := &cannedCompleter{reply: "42"}
	ai := NewAiService(db, llm)
	ctx := context.Background()

	alice := createUser(t, db, "alice")

	chat, err := ai.NewChat(ctx, alice.ID)
	require.NoError(t, err)

	reply, err := ai.Send(ctx, alice.ID, chat.Id, "meaning of life?")
	require.NoError(t, err)
	assert.Equal(t, model.AiRoleAssistant, reply.Role)
	assert.Equal(t, "42", reply.Content)

	// The model saw the prompt as part of the accumulated history.
	require.Len(t, llm.seen, 1)

	view, err := ai.Get(ctx, alice.ID, chat.Id)
	require.NoError(t, err)
	require.Len(t, view.Messages, 2)
	assert.Equal(t, model.AiRoleUser, view.Messages[0].Role)
	assert.Equal(t, "meaning of life?", view.Messages[0].Content)
	assert.Equal(t, model.AiRoleAssistant, view.Messages[1].Role)

	// A follow-up carries the whole conversation.
	_, err = ai.Send(ctx, alice.ID, chat.Id, "are you sure?")
	require.NoError(t, err)
	assert.Len(t, llm.seen, 3)
}

func TestAiSendValidation(t *testing.T) {
	db := newTestDB(t)
	ai := NewAiService(db, &cannedCompleter{reply: "ok"})
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	chat, err := ai.NewChat(ctx, alice.ID)
	require.NoError(t, err)

	_, err = ai.Send(ctx, alice.ID, chat.Id, "  ")
	assert.ErrorIs(t, err, apperrors.ErrEmptyBody)

	// AI chats are owner-only; another user's chat looks absent.
	_, err = ai.Send(ctx, bob.ID, chat.Id, "hi")
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)

	_, err = ai.Get(ctx, bob.ID, chat.Id)
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)
}

func TestAiSendCompletionFailure(t *testing.T) {
	db := newTestDB(t)
	llm := &cannedCompleter{err: assert.AnError}
	ai := NewAiService(db, llm)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	chat, err := ai.NewChat(ctx, alice.ID)
	require.NoError(t, err)

	_, err = ai.Send(ctx, alice.ID, chat.Id, "hello?")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))

	// The prompt is stored then fetchable even when the completion fails.
	view, err := ai.Get(ctx, alice.ID, chat.Id)
	require.NoError(t, err)
	require.Len(t, view.Messages, 1)
	assert.Equal(t, model.AiRoleUser, view.Messages[0].Role)
}
