package model

import "gorm.io/gorm"

type AiRole string

const (
	AiRoleUser      AiRole = "user"
	AiRoleAssistant AiRole = "assistant"
)

// AiChat is the single-user analogue of Chat used for assistant
// conversations. No friendship precondition and no peer to notify.
type AiChat struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Messages []AiMessage `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type AiMessage struct {
	gorm.Model
	AiChatID uint   `gorm:"not null;index" json:"ai_chat_id"`
	Role     AiRole `gorm:"type:varchar(20);not null" json:"role"`
	Content  string `gorm:"not null" json:"content"`
}
