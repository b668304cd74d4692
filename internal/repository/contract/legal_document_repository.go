package contract

import (
	"context"

	"legal-rag-be/internal/entity"
)

type LegalDocumentRepository interface {
	Create(ctx context.Context, document *entity.LegalDocument) error
	// FindByTitleYear returns nil, nil when no document matches.
	FindByTitleYear(ctx context.Context, title, year string) (*entity.LegalDocument, error)
}

type LegalChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.LegalChunk) error
	// SearchSimilar returns the limit chunks closest to embedding by cosine
	// similarity, best first.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredLegalChunk, error)
}
