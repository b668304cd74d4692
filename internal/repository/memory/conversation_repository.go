package memory

import (
	"context"
	"time"

	"legal-rag-be/internal/entity"
	"legal-rag-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type ConversationRepository struct {
	store *Store
}

func NewConversationRepository(store *Store) contract.ConversationRepository {
	return &ConversationRepository{store: store}
}

func (r *ConversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if conversation.Id == uuid.Nil {
		conversation.Id = uuid.New()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	stored := *conversation
	return r.store.conversations.Add(conversation.Id.String(), &stored, cache.NoExpiration)
}

func (r *ConversationRepository) SetNameIfEmpty(ctx context.Context, id uuid.UUID, name string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	x, found := r.store.conversations.Get(id.String())
	if !found {
		return false, nil
	}
	c := x.(*entity.Conversation)
	if c.Name != "" {
		return false, nil
	}
	now := time.Now()
	c.Name = name
	c.UpdatedAt = &now
	return true, nil
}

func (r *ConversationRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	x, found := r.store.conversations.Get(id.String())
	if !found {
		return nil, nil
	}
	c := *x.(*entity.Conversation)
	return &c, nil
}

type ConversationTurnRepository struct {
	store *Store
}

func NewConversationTurnRepository(store *Store) contract.ConversationTurnRepository {
	return &ConversationTurnRepository{store: store}
}

func (r *ConversationTurnRepository) Append(ctx context.Context, turn *entity.ConversationTurn) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := turn.ConversationId.String()
	var turns []*entity.ConversationTurn
	if x, found := r.store.turns.Get(key); found {
		turns = x.([]*entity.ConversationTurn)
	}

	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	turn.Sequence = len(turns)

	stored := *turn
	r.store.turns.Set(key, append(turns, &stored), cache.NoExpiration)
	return nil
}

func (r *ConversationTurnRepository) FindByConversationId(ctx context.Context, conversationId uuid.UUID) ([]*entity.ConversationTurn, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	x, found := r.store.turns.Get(conversationId.String())
	if !found {
		return []*entity.ConversationTurn{}, nil
	}
	turns := x.([]*entity.ConversationTurn)
	out := make([]*entity.ConversationTurn, len(turns))
	for i, t := range turns {
		c := *t
		out[i] = &c
	}
	return out, nil
}

func (r *ConversationTurnRepository) CountByConversationId(ctx context.Context, conversationId uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	x, found := r.store.turns.Get(conversationId.String())
	if !found {
		return 0, nil
	}
	return len(x.([]*entity.ConversationTurn)), nil
}
