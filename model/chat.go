package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Chat is the single conversation between an unordered pair of friends.
// CanonicalKey is derived from the sorted pair so lookups and the unique
// index are independent of which participant initiated creation.
type Chat struct {
	gorm.Model
	UserID1      uint   `gorm:"not null" json:"user_id1"`
	UserID2      uint   `gorm:"not null" json:"user_id2"`
	CanonicalKey string `gorm:"uniqueIndex;not null" json:"canonical_key"`

	User1    User      `gorm:"foreignKey:UserID1" json:"-"`
	User2    User      `gorm:"foreignKey:UserID2" json:"-"`
	Messages []Message `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ChatKey builds the canonical conversation key for an unordered pair.
func ChatKey(a, b uint) string {
	lo, hi := OrderPair(a, b)
	return fmt.Sprintf("%d--%d", lo, hi)
}

// Message belongs to exactly one chat and is immutable once created.
// CreatedAt is the server-assigned timestamp; (created_at, id) is the total
// order within a chat.
type Message struct {
	gorm.Model
	ChatID uint   `gorm:"not null;index" json:"chat_id"`
	UserID uint   `gorm:"not null" json:"user_id"`
	Body   string `gorm:"type:varchar(2500);not null" json:"body"`
}
