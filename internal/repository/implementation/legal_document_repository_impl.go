package implementation

import (
	"context"
	"errors"

	"legal-rag-be/internal/entity"
	"legal-rag-be/internal/mapper"
	"legal-rag-be/internal/model"
	"legal-rag-be/internal/repository/contract"
	"legal-rag-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LegalDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LegalDocumentMapper
}

func NewLegalDocumentRepository(db *gorm.DB) contract.LegalDocumentRepository {
	return &LegalDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewLegalDocumentMapper(),
	}
}

func (r *LegalDocumentRepositoryImpl) Create(ctx context.Context, document *entity.LegalDocument) error {
	m := r.mapper.DocumentToModel(document)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.DocumentToEntity(m)
	return nil
}

func (r *LegalDocumentRepositoryImpl) FindByTitleYear(ctx context.Context, title, year string) (*entity.LegalDocument, error) {
	var m model.LegalDocument
	query := specification.Apply(r.db.WithContext(ctx), specification.ByTitleYear{Title: title, Year: year})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DocumentToEntity(&m), nil
}

type LegalChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LegalDocumentMapper
}

func NewLegalChunkRepository(db *gorm.DB) contract.LegalChunkRepository {
	return &LegalChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewLegalDocumentMapper(),
	}
}

func (r *LegalChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.LegalChunk) error {
	models := make([]*model.LegalChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ChunkToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*chunks[i] = *r.mapper.ChunkToEntity(m)
	}
	return nil
}

// SearchSimilar ranks chunks by cosine similarity. pgvector's <=> is cosine
// distance, so similarity is 1 - distance. Ordering on the distance
// expression itself, ascending, lets the planner use the HNSW index.
func (r *LegalChunkRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredLegalChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	type result struct {
		model.LegalChunk
		Title      string
		Year       string
		PdfUrl     string
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("legal_chunks").
		Select("legal_chunks.*, legal_documents.title, legal_documents.year, legal_documents.pdf_url, 1 - (legal_chunks.embedding_value <=> ?) AS similarity", queryVector).
		Joins("JOIN legal_documents ON legal_documents.id = legal_chunks.document_id").
		Where("legal_chunks.deleted_at IS NULL").
		Where("legal_documents.deleted_at IS NULL").
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "legal_chunks.embedding_value <=> ?",
			Vars: []interface{}{queryVector},
		}}).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredLegalChunk, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredLegalChunk{
			Chunk: r.mapper.ChunkToEntity(&res.LegalChunk),
			Document: &entity.LegalDocument{
				Id:     res.DocumentId,
				Title:  res.Title,
				Year:   res.Year,
				PdfUrl: res.PdfUrl,
			},
			Similarity: entity.ClampSimilarity(res.Similarity),
		}
	}
	return scored, nil
}
