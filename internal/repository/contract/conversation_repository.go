package contract

import (
	"context"

	"legal-rag-be/internal/entity"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	// SetNameIfEmpty names the conversation only if it has no name yet and
	// reports whether the name was written.
	SetNameIfEmpty(ctx context.Context, id uuid.UUID, name string) (bool, error)
	// FindById returns nil, nil when the conversation does not exist.
	FindById(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
}

type ConversationTurnRepository interface {
	// Append stores turn as the next turn of its conversation and fills in
	// Id, Sequence and CreatedAt.
	Append(ctx context.Context, turn *entity.ConversationTurn) error
	// FindByConversationId returns turns oldest first.
	FindByConversationId(ctx context.Context, conversationId uuid.UUID) ([]*entity.ConversationTurn, error)
	// CountByConversationId returns how many turns are stored, which is also
	// the sequence the next turn will get.
	CountByConversationId(ctx context.Context, conversationId uuid.UUID) (int, error)
}
