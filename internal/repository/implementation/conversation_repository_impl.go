package implementation

import (
	"context"
	"errors"
	"fmt"

	"legal-rag-be/internal/entity"
	"legal-rag-be/internal/mapper"
	"legal-rag-be/internal/model"
	"legal-rag-be/internal/repository/contract"
	"legal-rag-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxAppendAttempts = 5
	appendSavepoint   = "append_turn"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ConversationToModel(conversation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) SetNameIfEmpty(ctx context.Context, id uuid.UUID, name string) (bool, error) {
	query := specification.Apply(
		r.db.WithContext(ctx).Model(&model.Conversation{}),
		specification.ByID{ID: id},
		specification.UnnamedConversation{},
	)
	res := query.Update("name", name)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ConversationRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	var m model.Conversation
	query := specification.Apply(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ConversationToEntity(&m), nil
}

type ConversationTurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationTurnRepository(db *gorm.DB) contract.ConversationTurnRepository {
	return &ConversationTurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

// Append picks the next sequence number and inserts. A concurrent append
// to the same conversation trips the unique index and the loop retries with
// a fresh sequence. Inside a transaction every insert runs behind a
// savepoint, since Postgres refuses further statements in a transaction
// after a failed one until it is rolled back.
func (r *ConversationTurnRepositoryImpl) Append(ctx context.Context, turn *entity.ConversationTurn) error {
	db := r.db.WithContext(ctx)
	_, inTx := db.Statement.ConnPool.(gorm.TxCommitter)

	var lastErr error
	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		next, err := r.nextSequence(db, turn.ConversationId)
		if err != nil {
			return err
		}

		if inTx {
			if err := db.SavePoint(appendSavepoint).Error; err != nil {
				return err
			}
		}

		m := r.mapper.TurnToModel(turn)
		m.Sequence = next
		err = db.Create(m).Error
		if err == nil {
			*turn = *r.mapper.TurnToEntity(m)
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		if inTx {
			if rbErr := db.RollbackTo(appendSavepoint).Error; rbErr != nil {
				return fmt.Errorf("append turn: rollback to savepoint: %w", rbErr)
			}
		}
		lastErr = err
	}
	return fmt.Errorf("append turn: sequence contention after %d attempts: %w", maxAppendAttempts, lastErr)
}

func (r *ConversationTurnRepositoryImpl) nextSequence(db *gorm.DB, conversationId uuid.UUID) (int, error) {
	var next int
	err := specification.Apply(
		db.Model(&model.ConversationTurn{}),
		specification.ByConversationID{ConversationID: conversationId},
	).Select("COALESCE(MAX(sequence), -1) + 1").Scan(&next).Error
	return next, err
}

func (r *ConversationTurnRepositoryImpl) CountByConversationId(ctx context.Context, conversationId uuid.UUID) (int, error) {
	return r.nextSequence(r.db.WithContext(ctx), conversationId)
}

func (r *ConversationTurnRepositoryImpl) FindByConversationId(ctx context.Context, conversationId uuid.UUID) ([]*entity.ConversationTurn, error) {
	var models []*model.ConversationTurn
	query := specification.Apply(
		r.db.WithContext(ctx),
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "sequence"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ConversationTurn, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TurnToEntity(m)
	}
	return entities, nil
}
