package unitofwork

import (
	"context"

	"legal-rag-be/internal/repository/contract"
)

// UnitOfWork hands out repositories that share one connection or, between
// Begin and Commit/Rollback, one transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	ConversationTurnRepository() contract.ConversationTurnRepository
	LegalDocumentRepository() contract.LegalDocumentRepository
	LegalChunkRepository() contract.LegalChunkRepository
}

// RepositoryFactory opens one UnitOfWork per request.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
