package model

import "gorm.io/gorm"

type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
	// Declared for parity with the status enum, but never stored:
	// rejecting a request deletes the edge instead.
	FriendStatusRejected FriendStatus = "rejected"
)

// Friend is the single edge between an unordered pair of users. Rows are
// stored in canonical order (UserID1 < UserID2) and the composite unique
// index makes the pair, not the ordered tuple, the identity — two racing
// inserts for (a,b) and (b,a) cannot both persist. RequesterID records
// which side sent the original request.
type Friend struct {
	gorm.Model
	UserID1     uint         `gorm:"not null;uniqueIndex:idx_friend_pair" json:"user_id1"`
	UserID2     uint         `gorm:"not null;uniqueIndex:idx_friend_pair" json:"user_id2"`
	RequesterID uint         `gorm:"not null" json:"requester_id"`
	Status      FriendStatus `gorm:"type:varchar(20);not null" json:"status"`

	User1 User `gorm:"foreignKey:UserID1" json:"-"`
	User2 User `gorm:"foreignKey:UserID2" json:"-"`
}

// OrderPair returns an unordered pair of user ids in canonical order.
func OrderPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
