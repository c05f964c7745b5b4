package service

import (
	"context"
	"sync"
	"testing"

	"chat-service/fanout"
	"chat-service/model"
	apperrors "chat-service/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func befriend(t *testing.T, friends *FriendService, requester, accepter *model.User) {
	t.Helper()
	ctx := context.Background()
	_, err := friends.Request(ctx, requester.ID, accepter.Username)
	require.NoError(t, err)
	_, err = friends.Accept(ctx, accepter.ID, requester.ID)
	require.NoError(t, err)
}

func TestResolveOrCreateRequiresFriendship(t *testing.T) {
	db := newTestDB(t)
	friends := NewFriendService(db)
	fo, rec := newRecordedFanout()
	chats := NewChatService(db, friends, fo)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	_, _, err := chats.ResolveOrCreate(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFriends)

	// No chat row, no fanout.
	var count int64
	require.NoError(t, db.Model(&model.Chat{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	assert.Empty(t, rec.all())

	// A pending request is not enough either.
	_, err = friends.Request(ctx, alice.ID, "bob")
	require.NoError(t, err)

	_, _, err = chats.ResolveOrCreate(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFriends)
}

func TestResolveOrCreateIdempotent(t *testing.T) {
	db := newTestDB(t)
	friends := NewFriendService(db)
	fo, rec := newRecordedFanout()
	chats := NewChatService(db, friends, fo)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	befriend(t, friends, alice, bob)

	chat, created, err := chats.ResolveOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// Creation notifies both participants' chats channels, once each.
	assert.ElementsMatch(t, []string{
		fanout.ChatsChannel(alice.ID),
		fanout.ChatsChannel(bob.ID),
	}, rec.channels())
	for _, e := range rec.all() {
		assert.Equal(t, fanout.EventMyChats, e.Event)
	}

	// The reversed argument order resolves to the same chat with no new
	// fanout.
	same, created, err := chats.ResolveOrCreate(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chat.Id, same.Id)
	assert.Len(t, rec.all(), 2)

	var count int64
	require.NoError(t, db.Model(&model.Chat{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateChatLosesRaceToCommittedRow(t *testing.T) {
	db := newTestDB(t)
	friends := NewFriendService(db)
	fo, _ := newRecordedFanout()
	chats := NewChatService(db, friends, fo)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	key := model.ChatKey(alice.ID, bob.ID)
	lo, hi := model.OrderPair(alice.ID, bob.ID)
	winner := &model.Chat{UserID1: lo, UserID2: hi, CanonicalKey: key}
	require.NoError(t, db.Create(winner).Error)

	// Our insert hits the unique index and must return the winner's row
	// instead of an error: first committer wins, not first caller.
	chat, won, err := chats.createChat(ctx, alice.ID, bob.ID, key)
	require.NoError(t, err)
	assert.False(t, won)
	assert.Equal(t, winner.ID, chat.ID)

	var count int64
	require.NoError(t, db.Model(&model.Chat{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestConcurrentResolveOrCreateConverges(t *testing.T) {
	db := newTestDB(t)
	friends := NewFriendService(db)
	fo, _ := newRecordedFanout()
	chats := NewChatService(db, friends, fo)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	befriend(t, friends, alice, bob)

	ids := make([]uint, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		chat, _, err := chats.ResolveOrCreate(ctx, alice.ID, bob.ID)
		if err == nil {
			ids[0] = chat.Id
		}
		errs[0] = err
	}()
	go func() {
		defer wg.Done()
		chat, _, err := chats.ResolveOrCreate(ctx, bob.ID, alice.ID)
		if err == nil {
			ids[1] = chat.Id
		}
		errs[1] = err
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, ids[0], ids[1])

	var count int64
	require.NoError(t, db.Model(&model.Chat{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetIsParticipantsOnly(t *testing.T) {
	db := newTestDB(t)
	friends := NewFriendService(db)
	fo, _ := newRecordedFanout()
	chats := NewChatService(db, friends, fo)
	messages := NewMessageService(db, fo)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	eve := createUser(t, db, "eve")
	befriend(t, friends, alice, bob)

	chat, _, err := chats.ResolveOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = messages.Append(ctx, alice.ID, chat.Id, "hello")
	require.NoError(t, err)
	_, err = messages.Append(ctx, bob.ID, chat.Id, "hi back")
	require.NoError(t, err)

	view, err := chats.Get(ctx, alice.ID, chat.Id)
	require.NoError(t, err)
	require.Len(t, view.Messages, 2)
	assert.Equal(t, "hi back", view.Messages[0].Body) // newest first
	assert.Equal(t, "hello", view.Messages[1].Body)
	assert.Equal(t, alice.ID, view.User1.Id)
	assert.Equal(t, bob.ID, view.User2.Id)

	// An outsider cannot tell the chat exists.
	_, err = chats.Get(ctx, eve.ID, chat.Id)
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)

	_, err = chats.Get(ctx, alice.ID, chat.Id+100)
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)
}

func TestListForUser(t *testing.T) {
	db := newTestDB(t)
	friends := NewFriendService(db)
	fo, _ := newRecordedFanout()
	chats := NewChatService(db, friends, fo)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	befriend(t, friends, alice, bob)
	befriend(t, friends, alice, carol)

	_, _, err := chats.ResolveOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, _, err = chats.ResolveOrCreate(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	aliceChats, err := chats.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceChats, 2)

	bobChats, err := chats.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobChats, 1)
}

func TestRemoveChat(t *testing.T) {
	db := newTestDB(t)
	friends := NewFriendService(db)
	fo, _ := newRecordedFanout()
	chats := NewChatService(db, friends, fo)
	messages := NewMessageService(db, fo)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	eve := createUser(t, db, "eve")
	befriend(t, friends, alice, bob)

	chat, _, err := chats.ResolveOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = messages.Append(ctx, alice.ID, chat.Id, "bye")
	require.NoError(t, err)

	err = chats.Remove(ctx, eve.ID, chat.Id)
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)

	require.NoError(t, chats.Remove(ctx, bob.ID, chat.Id))

	var chatCount, messageCount int64
	require.NoError(t, db.Unscoped().Model(&model.Chat{}).Count(&chatCount).Error)
	require.NoError(t, db.Unscoped().Model(&model.Message{}).Count(&messageCount).Error)
	assert.EqualValues(t, 0, chatCount)
	assert.EqualValues(t, 0, messageCount)

	err = chats.Remove(ctx, bob.ID, chat.Id)
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)
}
