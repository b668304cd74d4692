package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID
	OwnerId   string
	Name      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type TurnCitation struct {
	Title      string `json:"title"`
	Year       string `json:"year"`
	PageNumber string `json:"pageNumber"`
	SourceURL  string `json:"sourceUrl"`
}

// ConversationTurn is append-only. Sequence is assigned by the repository
// and is dense per conversation starting at 0.
type ConversationTurn struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Sequence       int
	Question       string
	Intent         string
	AnswerText     string
	Citation       *TurnCitation
	MatchScore     *float64
	CreatedAt      time.Time
}
