package service

import (
	"context"
	"strings"
	"time"

	"chat-service/model"
	apperrors "chat-service/pkg/errors"

	"gorm.io/gorm"
)

// FriendService owns pairwise friendship edges and their lifecycle. The
// canonical-pair unique index is the authority on edge identity; the
// service only decides how conflicts and transitions surface to callers.
type FriendService struct {
	db *gorm.DB
}

func NewFriendService(db *gorm.DB) *FriendService {
	return &FriendService{db: db}
}

// FriendEntry is one accepted friendship as seen by a given user.
type FriendEntry struct {
	Friend        model.PublicUser `json:"friend"`
	RequestedByMe bool             `json:"requested_by_me"`
	Since         time.Time        `json:"since"`
}

// FriendRequestEntry is one pending incoming request.
type FriendRequestEntry struct {
	From    model.PublicUser `json:"from"`
	Created time.Time        `json:"created"`
}

// Request inserts a pending edge from requester to the named user. The
// caller is told whether an existing edge is already accepted or still
// pending, as distinct outcomes. No fanout: requests are polled.
func (s *FriendService) Request(ctx context.Context, requesterID uint, targetUsername string) (*model.Friend, error) {
	target := new(model.User)
	err := s.db.WithContext(ctx).
		Where(&model.User{Username: strings.ToLower(targetUsername)}).
		First(target).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up user", err)
	}

	if target.ID == requesterID {
		return nil, apperrors.ErrSelfReference
	}

	lo, hi := model.OrderPair(requesterID, target.ID)

	if existing, err := s.edge(ctx, lo, hi); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, statusConflict(existing)
	}

	edge := &model.Friend{
		UserID1:     lo,
		UserID2:     hi,
		RequesterID: requesterID,
		Status:      model.FriendStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(edge).Error; err != nil {
		// A racing request for the same pair may have committed between the
		// check and the insert; the unique index rejects ours. Re-fetch so
		// the caller still gets a status-aware conflict.
		if existing, lookupErr := s.edge(ctx, lo, hi); lookupErr == nil && existing != nil {
			return nil, statusConflict(existing)
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to create friend request", err)
	}
	return edge, nil
}

func statusConflict(edge *model.Friend) error {
	if edge.Status == model.FriendStatusAccepted {
		return apperrors.ErrAlreadyFriends
	}
	return apperrors.ErrRequestPending
}

// Accept transitions the pending edge from requester to accepted.
// Re-accepting an already-accepted edge is a no-op success. The requester
// cannot accept their own request.
func (s *FriendService) Accept(ctx context.Context, accepterID, requesterID uint) (*model.Friend, error) {
	if accepterID == requesterID {
		return nil, apperrors.ErrSelfReference
	}

	lo, hi := model.OrderPair(accepterID, requesterID)

	var edge *model.Friend
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		edge, err = edgeTx(tx, lo, hi)
		if err != nil {
			return err
		}
		if edge == nil {
			return apperrors.ErrNoSuchRequest
		}
		if edge.Status == model.FriendStatusAccepted {
			return nil // no-op success
		}
		if edge.RequesterID == accepterID {
			return apperrors.ErrNoSuchRequest
		}

		edge.Status = model.FriendStatusAccepted
		return tx.Model(edge).Update("status", model.FriendStatusAccepted).Error
	})
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to accept friend request", err)
	}
	return edge, nil
}

// Remove deletes the edge regardless of status: the same operation backs
// rejecting a pending request and unfriending. Deleting an accepted edge
// also deletes the pair's chat and its messages in the same transaction,
// so no chat survives between non-friends.
func (s *FriendService) Remove(ctx context.Context, userID, otherID uint) error {
	lo, hi := model.OrderPair(userID, otherID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := edgeTx(tx, lo, hi)
		if err != nil {
			return err
		}
		if edge == nil {
			return apperrors.ErrNoSuchRelationship
		}

		if err := tx.Unscoped().Delete(edge).Error; err != nil {
			return err
		}
		return deleteChatByKey(tx, model.ChatKey(lo, hi))
	})
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			return err
		}
		return apperrors.Wrap(apperrors.CodeInternal, "failed to remove relationship", err)
	}
	return nil
}

// AreFriends reports whether an accepted edge exists for the pair.
func (s *FriendService) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	lo, hi := model.OrderPair(a, b)
	edge, err := s.edge(ctx, lo, hi)
	if err != nil {
		return false, err
	}
	return edge != nil && edge.Status == model.FriendStatusAccepted, nil
}

// ListFriends returns every user with an accepted edge to the given user,
// annotated with which side sent the original request.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]FriendEntry, error) {
	var edges []model.Friend
	err := s.db.WithContext(ctx).
		Preload("User1").Preload("User2").
		Where("(user_id1 = ? OR user_id2 = ?) AND status = ?", userID, userID, model.FriendStatusAccepted).
		Order("updated_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to list friends", err)
	}

	entries := make([]FriendEntry, 0, len(edges))
	for _, edge := range edges {
		peer := edge.User1
		if edge.UserID1 == userID {
			peer = edge.User2
		}
		entries = append(entries, FriendEntry{
			Friend:        peer.Public(),
			RequestedByMe: edge.RequesterID == userID,
			Since:         edge.UpdatedAt,
		})
	}
	return entries, nil
}

// ListPendingIncoming returns pending requests where the given user is the
// target. A requester never sees their own outgoing request here.
func (s *FriendService) ListPendingIncoming(ctx context.Context, userID uint) ([]FriendRequestEntry, error) {
	var edges []model.Friend
	err := s.db.WithContext(ctx).
		Preload("User1").Preload("User2").
		Where("(user_id1 = ? OR user_id2 = ?) AND status = ? AND requester_id <> ?",
			userID, userID, model.FriendStatusPending, userID).
		Order("created_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to list friend requests", err)
	}

	entries := make([]FriendRequestEntry, 0, len(edges))
	for _, edge := range edges {
		requester := edge.User1
		if edge.UserID2 == edge.RequesterID {
			requester = edge.User2
		}
		entries = append(entries, FriendRequestEntry{
			From:    requester.Public(),
			Created: edge.CreatedAt,
		})
	}
	return entries, nil
}

func (s *FriendService) edge(ctx context.Context, lo, hi uint) (*model.Friend, error) {
	return edgeTx(s.db.WithContext(ctx), lo, hi)
}

func edgeTx(tx *gorm.DB, lo, hi uint) (*model.Friend, error) {
	edge := new(model.Friend)
	err := tx.Where("user_id1 = ? AND user_id2 = ?", lo, hi).First(edge).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to look up friend edge", err)
	}
	return edge, nil
}

// deleteChatByKey hard-deletes a chat and its messages. Shared by unfriend
// and explicit chat deletion.
func deleteChatByKey(tx *gorm.DB, key string) error {
	chat := new(model.Chat)
	err := tx.Where(&model.Chat{CanonicalKey: key}).First(chat).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return deleteChat(tx, chat)
}

func deleteChat(tx *gorm.DB, chat *model.Chat) error {
	if err := tx.Unscoped().Where("chat_id = ?", chat.ID).Delete(&model.Message{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(chat).Error
}
