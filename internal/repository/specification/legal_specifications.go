package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

// ByTitleYear matches a document exactly; titles are stored as published.
type ByTitleYear struct {
	Title string
	Year  string
}

func (s ByTitleYear) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title = ? AND year = ?", s.Title, s.Year)
}

// UnnamedConversation restricts an update to conversations without a name.
type UnnamedConversation struct{}

func (s UnnamedConversation) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ''")
}
