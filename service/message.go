package service

import (
	"context"
	"strings"
	"time"

	"chat-service/fanout"
	"chat-service/model"
	apperrors "chat-service/pkg/errors"

	"gorm.io/gorm"
)

const maxBodyLength = 2500

// MessageService appends and retrieves ordered messages within a chat.
// The log is append-only and read-heavy; ordering is (created_at, id),
// newest-first for retrieval.
type MessageService struct {
	db     *gorm.DB
	fanout *fanout.Fanout
}

func NewMessageService(db *gorm.DB, fo *fanout.Fanout) *MessageService {
	return &MessageService{db: db, fanout: fo}
}

type MessageView struct {
	Id      uint      `json:"id"`
	Chat    uint      `json:"chat"`
	From    uint      `json:"from"`
	Body    string    `json:"body"`
	Created time.Time `json:"created"`
}

func messageView(m *model.Message) MessageView {
	return MessageView{
		Id:      m.ID,
		Chat:    m.ChatID,
		From:    m.UserID,
		Body:    m.Body,
		Created: m.CreatedAt,
	}
}

// Append persists one message with a server-assigned timestamp. The author
// must be a participant and the body non-empty after trimming. Fanout fires
// exactly once per successful append, to both participants' message
// channels, never on failure.
func (s *MessageService) Append(ctx context.Context, authorID, chatID uint, body string) (*MessageView, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.ErrEmptyBody
	}
	if len(body) > maxBodyLength {
		return nil, apperrors.ErrBodyTooLong
	}

	chat := new(model.Chat)
	err := s.db.WithContext(ctx).First(chat, chatID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrChatNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up chat", err)
	}
	if !isParticipant(chat, authorID) {
		return nil, apperrors.ErrNotParticipant
	}

	message := &model.Message{
		ChatID: chat.ID,
		UserID: authorID,
		Body:   body,
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to create message", err)
	}

	view := messageView(message)
	s.fanout.Publish(
		fanout.Notification{
			Channel: fanout.MessagesChannel(chat.ID, chat.UserID1),
			Event:   fanout.EventNewMessage,
			Payload: view,
		},
		fanout.Notification{
			Channel: fanout.MessagesChannel(chat.ID, chat.UserID2),
			Event:   fanout.EventNewMessage,
			Payload: view,
		},
	)
	return &view, nil
}

// List returns messages newest-first. beforeID is an exclusive cursor; the
// (created_at, id) comparison keeps pages stable under concurrent appends.
func (s *MessageService) List(ctx context.Context, callerID, chatID uint, limit int, beforeID uint) ([]MessageView, error) {
	chat := new(model.Chat)
	err := s.db.WithContext(ctx).First(chat, chatID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrChatNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up chat", err)
	}
	if !isParticipant(chat, callerID) {
		return nil, apperrors.ErrChatNotFound
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.db.WithContext(ctx).
		Where("chat_id = ?", chat.ID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if beforeID != 0 {
		cursor := new(model.Message)
		err := s.db.WithContext(ctx).First(cursor, beforeID).Error
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("cursor message not found")
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up cursor", err)
		}
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var messages []model.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to list messages", err)
	}

	views := make([]MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, messageView(&messages[i]))
	}
	return views, nil
}
