package mapper

import (
	"encoding/json"

	"legal-rag-be/internal/entity"
	"legal-rag-be/internal/model"
	"legal-rag-be/pkg/rag"

	"github.com/google/uuid"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}
	e := &entity.Conversation{
		Id:        c.Id,
		OwnerId:   c.OwnerId,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		e.UpdatedAt = &t
	}
	return e
}

func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	out := &model.Conversation{
		Id:        c.Id,
		OwnerId:   c.OwnerId,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
	if c.UpdatedAt != nil {
		out.UpdatedAt = *c.UpdatedAt
	}
	return out
}

func (m *ConversationMapper) TurnToEntity(t *model.ConversationTurn) *entity.ConversationTurn {
	if t == nil {
		return nil
	}
	e := &entity.ConversationTurn{
		Id:             t.Id,
		ConversationId: t.ConversationId,
		Sequence:       t.Sequence,
		Question:       t.Question,
		Intent:         t.Intent,
		AnswerText:     t.AnswerText,
		MatchScore:     t.MatchScore,
		CreatedAt:      t.CreatedAt,
	}
	if len(t.Citation) > 0 && string(t.Citation) != "null" {
		var c entity.TurnCitation
		if err := json.Unmarshal(t.Citation, &c); err == nil {
			e.Citation = &c
		}
	}
	return e
}

func (m *ConversationMapper) TurnToModel(t *entity.ConversationTurn) *model.ConversationTurn {
	if t == nil {
		return nil
	}
	out := &model.ConversationTurn{
		Id:             t.Id,
		ConversationId: t.ConversationId,
		Sequence:       t.Sequence,
		Question:       t.Question,
		Intent:         t.Intent,
		AnswerText:     t.AnswerText,
		MatchScore:     t.MatchScore,
		CreatedAt:      t.CreatedAt,
	}
	if t.Citation != nil {
		raw, _ := json.Marshal(t.Citation)
		out.Citation = raw
	}
	return out
}

// TurnToDomain converts a stored turn into the pipeline's rag.Turn.
func (m *ConversationMapper) TurnToDomain(t *entity.ConversationTurn) rag.Turn {
	out := rag.Turn{
		Question:   t.Question,
		Intent:     rag.Intent(t.Intent),
		AnswerText: t.AnswerText,
		MatchScore: t.MatchScore,
		CreatedAt:  t.CreatedAt,
	}
	if t.Citation != nil {
		out.Citation = &rag.Citation{
			Title:      t.Citation.Title,
			Year:       t.Citation.Year,
			PageNumber: t.Citation.PageNumber,
			SourceURL:  t.Citation.SourceURL,
		}
	}
	return out
}

// TurnFromDomain builds the entity to append for conversationID.
func (m *ConversationMapper) TurnFromDomain(conversationID uuid.UUID, t rag.Turn) *entity.ConversationTurn {
	out := &entity.ConversationTurn{
		ConversationId: conversationID,
		Question:       t.Question,
		Intent:         string(t.Intent),
		AnswerText:     t.AnswerText,
		MatchScore:     t.MatchScore,
		CreatedAt:      t.CreatedAt,
	}
	if t.Citation != nil {
		out.Citation = &entity.TurnCitation{
			Title:      t.Citation.Title,
			Year:       t.Citation.Year,
			PageNumber: t.Citation.PageNumber,
			SourceURL:  t.Citation.SourceURL,
		}
	}
	return out
}
