package service

import (
	"fmt"
	"sync"
	"testing"

	"chat-service/database"
	"chat-service/fanout"
	"chat-service/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory sqlite database with the production schema.
// A single connection keeps the in-memory database alive and serializes
// concurrent test goroutines the way a single Postgres row lock would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username:  username,
		Email:     fmt.Sprintf("%s@example.com", username),
		Password:  "irrelevant-hash",
		FirstName: "Test",
		LastName:  "User",
		Role:      "user",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// recorder captures published notifications in place of the socket.io
// transport.
type recorder struct {
	mu     sync.Mutex
	events []fanout.Notification
}

func (r *recorder) Publish(channel string, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fanout.Notification{Channel: channel, Event: event, Payload: payload})
}

func (r *recorder) all() []fanout.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]fanout.Notification(nil), r.events...)
}

func (r *recorder) channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	channels := make([]string, 0, len(r.events))
	for _, e := range r.events {
		channels = append(channels, e.Channel)
	}
	return channels
}

func newRecordedFanout() (*fanout.Fanout, *recorder) {
	rec := &recorder{}
	return fanout.New(rec, nil), rec
}
