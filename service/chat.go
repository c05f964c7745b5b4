package service

import (
	"context"
	"time"

	"chat-service/fanout"
	"chat-service/model"
	apperrors "chat-service/pkg/errors"

	"gorm.io/gorm"
)

// ChatService maps an unordered pair of friends to exactly one chat,
// creating it lazily and idempotently, and orchestrates fanout after the
// create commits. Concurrent creators for the same pair converge on a
// single row: first committer wins, not first caller.
type ChatService struct {
	db      *gorm.DB
	friends *FriendService
	fanout  *fanout.Fanout
}

func NewChatService(db *gorm.DB, friends *FriendService, fo *fanout.Fanout) *ChatService {
	return &ChatService{db: db, friends: friends, fanout: fo}
}

// ChatView is a chat with both participants' public projections and its
// messages, newest-first.
type ChatView struct {
	Id       uint             `json:"id"`
	Created  time.Time        `json:"created"`
	User1    model.PublicUser `json:"user1"`
	User2    model.PublicUser `json:"user2"`
	Messages []MessageView    `json:"messages"`
}

func chatView(chat *model.Chat, messages []model.Message) ChatView {
	view := ChatView{
		Id:       chat.ID,
		Created:  chat.CreatedAt,
		User1:    chat.User1.Public(),
		User2:    chat.User2.Public(),
		Messages: make([]MessageView, 0, len(messages)),
	}
	for _, m := range messages {
		view.Messages = append(view.Messages, messageView(&m))
	}
	return view
}

// ResolveOrCreate returns the single chat for the pair, creating it if
// absent. Requires an accepted friend edge. Fanout fires only when a new
// chat was actually created, to both participants' chats channels.
func (s *ChatService) ResolveOrCreate(ctx context.Context, userID, friendID uint) (*ChatView, bool, error) {
	friends, err := s.friends.AreFriends(ctx, userID, friendID)
	if err != nil {
		return nil, false, err
	}
	if !friends {
		return nil, false, apperrors.ErrNotFriends
	}

	key := model.ChatKey(userID, friendID)

	if existing, err := s.chatByKey(ctx, key); err != nil {
		return nil, false, err
	} else if existing != nil {
		view := chatView(existing, nil)
		return &view, false, nil
	}

	chat, won, err := s.createChat(ctx, userID, friendID, key)
	if err != nil {
		return nil, false, err
	}

	view := chatView(chat, nil)
	if !won {
		// Our insert lost the race; the winner already fanned out.
		return &view, false, nil
	}

	s.fanout.Publish(
		fanout.Notification{
			Channel: fanout.ChatsChannel(chat.UserID1),
			Event:   fanout.EventMyChats,
			Payload: view,
		},
		fanout.Notification{
			Channel: fanout.ChatsChannel(chat.UserID2),
			Event:   fanout.EventMyChats,
			Payload: view,
		},
	)
	return &view, true, nil
}

// createChat inserts the chat under the canonical-key unique index. Losing
// the insert race to a concurrent identical request is success: the winner
// row is re-fetched and returned.
func (s *ChatService) createChat(ctx context.Context, userID, friendID uint, key string) (*model.Chat, bool, error) {
	lo, hi := model.OrderPair(userID, friendID)
	chat := &model.Chat{
		UserID1:      lo,
		UserID2:      hi,
		CanonicalKey: key,
	}
	if err := s.db.WithContext(ctx).Create(chat).Error; err != nil {
		winner, lookupErr := s.chatByKey(ctx, key)
		if lookupErr == nil && winner != nil {
			return winner, false, nil
		}
		return nil, false, apperrors.Wrap(apperrors.CodeInternal, "failed to create chat", err)
	}
	// Reload with participants for the fanout payload.
	loaded, err := s.chatByID(ctx, chat.ID)
	if err != nil {
		return nil, false, err
	}
	return loaded, true, nil
}

// Get returns the chat with its full message history, newest-first. The
// caller must be a participant; anything else is indistinguishable from a
// missing chat.
func (s *ChatService) Get(ctx context.Context, callerID, chatID uint) (*ChatView, error) {
	chat, err := s.chatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil || !isParticipant(chat, callerID) {
		return nil, apperrors.ErrChatNotFound
	}

	var messages []model.Message
	err = s.db.WithContext(ctx).
		Where("chat_id = ?", chat.ID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load messages", err)
	}

	view := chatView(chat, messages)
	return &view, nil
}

// recentMessages bounds the per-chat preview returned by ListForUser.
const recentMessages = 50

// ListForUser returns every chat the user participates in, each with its
// most recent messages.
func (s *ChatService) ListForUser(ctx context.Context, userID uint) ([]ChatView, error) {
	var chats []model.Chat
	err := s.db.WithContext(ctx).
		Preload("User1").Preload("User2").
		Where("user_id1 = ? OR user_id2 = ?", userID, userID).
		Order("id").
		Find(&chats).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to list chats", err)
	}

	views := make([]ChatView, 0, len(chats))
	for i := range chats {
		var messages []model.Message
		err := s.db.WithContext(ctx).
			Where("chat_id = ?", chats[i].ID).
			Order("created_at DESC, id DESC").
			Limit(recentMessages).
			Find(&messages).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load messages", err)
		}
		views = append(views, chatView(&chats[i], messages))
	}
	return views, nil
}

// Remove deletes a chat and its messages. Participants only. Read-only
// clients learn about it on their next listing; deletion is not fanned out.
func (s *ChatService) Remove(ctx context.Context, callerID, chatID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chat := new(model.Chat)
		err := tx.First(chat, chatID).Error
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrChatNotFound
		}
		if err != nil {
			return err
		}
		if !isParticipant(chat, callerID) {
			return apperrors.ErrChatNotFound
		}
		return deleteChat(tx, chat)
	})
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			return err
		}
		return apperrors.Wrap(apperrors.CodeInternal, "failed to delete chat", err)
	}
	return nil
}

func isParticipant(chat *model.Chat, userID uint) bool {
	return chat.UserID1 == userID || chat.UserID2 == userID
}

func (s *ChatService) chatByKey(ctx context.Context, key string) (*model.Chat, error) {
	chat := new(model.Chat)
	err := s.db.WithContext(ctx).
		Preload("User1").Preload("User2").
		Where(&model.Chat{CanonicalKey: key}).
		First(chat).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up chat", err)
	}
	return chat, nil
}

func (s *ChatService) chatByID(ctx context.Context, id uint) (*model.Chat, error) {
	chat := new(model.Chat)
	err := s.db.WithContext(ctx).
		Preload("User1").Preload("User2").
		First(chat, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up chat", err)
	}
	return chat, nil
}
