package events

import (
	"fmt"
	"time"
)

const TypeTurnRecorded = "TURN_RECORDED"

// TurnRecorded is raised after a turn has been stored.
type TurnRecorded struct {
	ConversationID string    `json:"conversationId"`
	Sequence       int       `json:"sequence"`
	Intent         string    `json:"intent"`
	Outcome        string    `json:"outcome"`
	MatchScore     *float64  `json:"matchScore,omitempty"`
	Citation       string    `json:"citation,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func (e TurnRecorded) EventType() string {
	return TypeTurnRecorded
}

func (e TurnRecorded) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"conversationId": e.ConversationID,
		"sequence":       e.Sequence,
		"intent":         e.Intent,
		"outcome":        e.Outcome,
		"occurredAt":     e.OccurredAt.Format(time.RFC3339Nano),
	}
	if e.MatchScore != nil {
		p["matchScore"] = *e.MatchScore
	}
	if e.Citation != "" {
		p["citation"] = e.Citation
	}
	return p
}

func (e TurnRecorded) Timestamp() time.Time {
	return e.OccurredAt
}

// EventKey is unique per stored turn.
func (e TurnRecorded) EventKey() string {
	return fmt.Sprintf("%s:%d", e.ConversationID, e.Sequence)
}
