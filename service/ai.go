package service

import (
	"context"
	"strings"
	"time"

	"chat-service/model"
	apperrors "chat-service/pkg/errors"

	"github.com/tmc/langchaingo/llms"
	"gorm.io/gorm"
)

// Completer is the slice of the langchaingo model interface the service
// needs; tests substitute a canned implementation.
type Completer interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// AiService runs per-user assistant conversations. Same ordering and
// immutability rules as regular chats, but no friendship precondition and
// no fanout: the only recipient is the caller, who gets the completion in
// the response.
type AiService struct {
	db  *gorm.DB
	llm Completer
}

func NewAiService(db *gorm.DB, llm Completer) *AiService {
	return &AiService{db: db, llm: llm}
}

type AiMessageView struct {
	Role    model.AiRole `json:"role"`
	Content string       `json:"content"`
	Created time.Time    `json:"created"`
}

type AiChatView struct {
	Id       uint            `json:"id"`
	Messages []AiMessageView `json:"messages"`
}

// NewChat creates an empty assistant conversation owned by the caller.
func (s *AiService) NewChat(ctx context.Context, userID uint) (*AiChatView, error) {
	chat := &model.AiChat{UserID: userID}
	if err := s.db.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to create AI chat", err)
	}
	return &AiChatView{Id: chat.ID, Messages: []AiMessageView{}}, nil
}

// Get returns an assistant conversation with its ordered history. Owner
// only.
func (s *AiService) Get(ctx context.Context, userID, chatID uint) (*AiChatView, error) {
	chat, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	history, err := s.history(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	view := &AiChatView{Id: chat.ID, Messages: make([]AiMessageView, 0, len(history))}
	for _, m := range history {
		view.Messages = append(view.Messages, AiMessageView{
			Role:    m.Role,
			Content: m.Content,
			Created: m.CreatedAt,
		})
	}
	return view, nil
}

// Send persists the user's prompt, sends the accumulated history to the
// model, and persists and returns the assistant's reply.
func (s *AiService) Send(ctx context.Context, userID, chatID uint, prompt string) (*AiMessageView, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperrors.ErrEmptyBody
	}

	chat, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	userMessage := &model.AiMessage{
		AiChatID: chat.ID,
		Role:     model.AiRoleUser,
		Content:  prompt,
	}
	if err := s.db.WithContext(ctx).Create(userMessage).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to store prompt", err)
	}

	history, err := s.history(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	content := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		role := llms.ChatMessageTypeHuman
		if m.Role == model.AiRoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, m.Content))
	}

	resp, err := s.llm.GenerateContent(ctx, content)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.Internal("completion returned no choices")
	}

	reply := &model.AiMessage{
		AiChatID: chat.ID,
		Role:     model.AiRoleAssistant,
		Content:  resp.Choices[0].Content,
	}
	if err := s.db.WithContext(ctx).Create(reply).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to store reply", err)
	}

	return &AiMessageView{
		Role:    reply.Role,
		Content: reply.Content,
		Created: reply.CreatedAt,
	}, nil
}

func (s *AiService) ownedChat(ctx context.Context, userID, chatID uint) (*model.AiChat, error) {
	chat := new(model.AiChat)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(chat, chatID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrChatNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up AI chat", err)
	}
	return chat, nil
}

func (s *AiService) history(ctx context.Context, chatID uint) ([]model.AiMessage, error) {
	var history []model.AiMessage
	err := s.db.WithContext(ctx).
		Where("ai_chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&history).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load history", err)
	}
	return history, nil
}
