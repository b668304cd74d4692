package mapper

import (
	"legal-rag-be/internal/entity"
	"legal-rag-be/internal/model"
	"legal-rag-be/pkg/rag"

	"github.com/pgvector/pgvector-go"
)

type LegalDocumentMapper struct{}

func NewLegalDocumentMapper() *LegalDocumentMapper {
	return &LegalDocumentMapper{}
}

func (m *LegalDocumentMapper) DocumentToEntity(d *model.LegalDocument) *entity.LegalDocument {
	if d == nil {
		return nil
	}
	return &entity.LegalDocument{
		Id:        d.Id,
		Title:     d.Title,
		Year:      d.Year,
		PdfUrl:    d.PdfUrl,
		CreatedAt: d.CreatedAt,
	}
}

func (m *LegalDocumentMapper) DocumentToModel(d *entity.LegalDocument) *model.LegalDocument {
	if d == nil {
		return nil
	}
	return &model.LegalDocument{
		Id:        d.Id,
		Title:     d.Title,
		Year:      d.Year,
		PdfUrl:    d.PdfUrl,
		CreatedAt: d.CreatedAt,
	}
}

func (m *LegalDocumentMapper) ChunkToEntity(c *model.LegalChunk) *entity.LegalChunk {
	if c == nil {
		return nil
	}
	return &entity.LegalChunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		PageNumber: c.PageNumber,
		Text:       c.Text,
		Embedding:  c.EmbeddingValue.Slice(),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *LegalDocumentMapper) ChunkToModel(c *entity.LegalChunk) *model.LegalChunk {
	if c == nil {
		return nil
	}
	return &model.LegalChunk{
		Id:             c.Id,
		DocumentId:     c.DocumentId,
		PageNumber:     c.PageNumber,
		Text:           c.Text,
		EmbeddingValue: pgvector.NewVector(c.Embedding),
		CreatedAt:      c.CreatedAt,
	}
}

// ScoredChunkToMatch flattens a search hit into the pipeline's match shape.
func (m *LegalDocumentMapper) ScoredChunkToMatch(s *entity.ScoredLegalChunk) rag.RetrievalMatch {
	match := rag.RetrievalMatch{
		ID:    s.Chunk.Id.String(),
		Score: s.Similarity,
		Metadata: rag.Metadata{
			PageNumber: s.Chunk.PageNumber,
			Text:       s.Chunk.Text,
		},
	}
	if s.Document != nil {
		match.Metadata.Title = s.Document.Title
		match.Metadata.Year = s.Document.Year
		match.Metadata.SourceURL = s.Document.PdfUrl
	}
	return match
}
