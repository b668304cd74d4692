package memory

import (
	"context"

	"legal-rag-be/internal/repository/contract"
	"legal-rag-be/internal/repository/unitofwork"
)

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork has no rollback: every repository call applies immediately.
type UnitOfWork struct {
	store *Store
}

func (u *UnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *UnitOfWork) Commit() error                   { return nil }
func (u *UnitOfWork) Rollback() error                 { return nil }

func (u *UnitOfWork) ConversationRepository() contract.ConversationRepository {
	return NewConversationRepository(u.store)
}

func (u *UnitOfWork) ConversationTurnRepository() contract.ConversationTurnRepository {
	return NewConversationTurnRepository(u.store)
}

func (u *UnitOfWork) LegalDocumentRepository() contract.LegalDocumentRepository {
	return NewLegalDocumentRepository(u.store)
}

func (u *UnitOfWork) LegalChunkRepository() contract.LegalChunkRepository {
	return NewLegalChunkRepository(u.store)
}
