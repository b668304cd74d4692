package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Conversation struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerId   string         `gorm:"type:text;not null;index"`
	Name      string         `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ConversationTurn rows are never updated. The unique index on
// (conversation_id, sequence) makes concurrent appends fail instead of
// interleaving.
type ConversationTurn struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_turn_conversation_sequence"`
	Sequence       int            `gorm:"not null;uniqueIndex:idx_turn_conversation_sequence"`
	Question       string         `gorm:"type:text;not null"`
	Intent         string         `gorm:"type:varchar(32);not null"`
	AnswerText     string         `gorm:"type:text;not null"`
	Citation       datatypes.JSON `gorm:"type:jsonb"`
	MatchScore     *float64       `gorm:"type:double precision"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}
