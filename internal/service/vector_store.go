package service

import (
	"context"

	"legal-rag-be/internal/mapper"
	"legal-rag-be/internal/repository/unitofwork"
	"legal-rag-be/pkg/rag"
	"legal-rag-be/pkg/rag/search"
)

type chunkVectorStore struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.LegalDocumentMapper
}

// NewVectorStore exposes the chunk repository as the retriever's vector
// store.
func NewVectorStore(uowFactory unitofwork.RepositoryFactory) search.VectorStore {
	return &chunkVectorStore{
		uowFactory: uowFactory,
		mapper:     mapper.NewLegalDocumentMapper(),
	}
}

func (s *chunkVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]rag.RetrievalMatch, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.LegalChunkRepository().SearchSimilar(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	matches := make([]rag.RetrievalMatch, 0, len(scored))
	for _, sc := range scored {
		matches = append(matches, s.mapper.ScoredChunkToMatch(sc))
	}
	return matches, nil
}
