package memory

import (
	"context"
	"math"
	"sort"
	"time"

	"legal-rag-be/internal/entity"
	"legal-rag-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type LegalDocumentRepository struct {
	store *Store
}

func NewLegalDocumentRepository(store *Store) contract.LegalDocumentRepository {
	return &LegalDocumentRepository{store: store}
}

func (r *LegalDocumentRepository) Create(ctx context.Context, document *entity.LegalDocument) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if document.Id == uuid.Nil {
		document.Id = uuid.New()
	}
	if document.CreatedAt.IsZero() {
		document.CreatedAt = time.Now()
	}
	stored := *document
	if err := r.store.documents.Add(documentKey(document.Title, document.Year), &stored, cache.NoExpiration); err != nil {
		return err
	}
	r.store.documents.Set(document.Id.String(), &stored, cache.NoExpiration)
	return nil
}

func (r *LegalDocumentRepository) FindByTitleYear(ctx context.Context, title, year string) (*entity.LegalDocument, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	x, found := r.store.documents.Get(documentKey(title, year))
	if !found {
		return nil, nil
	}
	d := *x.(*entity.LegalDocument)
	return &d, nil
}

type LegalChunkRepository struct {
	store *Store
}

func NewLegalChunkRepository(store *Store) contract.LegalChunkRepository {
	return &LegalChunkRepository{store: store}
}

func (r *LegalChunkRepository) CreateBulk(ctx context.Context, chunks []*entity.LegalChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, c := range chunks {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		stored := *c
		r.store.chunks.Set(c.Id.String(), &stored, cache.NoExpiration)
	}
	return nil
}

// SearchSimilar scans every chunk. Chunks whose embedding length differs from
// the query are skipped.
func (r *LegalChunkRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredLegalChunk, error) {
	if limit <= 0 {
		limit = 3
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var scored []*entity.ScoredLegalChunk
	for _, item := range r.store.chunks.Items() {
		c := item.Object.(*entity.LegalChunk)
		if len(c.Embedding) != len(embedding) {
			continue
		}
		var doc *entity.LegalDocument
		if x, found := r.store.documents.Get(c.DocumentId.String()); found {
			d := *x.(*entity.LegalDocument)
			doc = &d
		}
		chunk := *c
		scored = append(scored, &entity.ScoredLegalChunk{
			Chunk:      &chunk,
			Document:   doc,
			Similarity: cosineSimilarity(embedding, c.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Chunk.Id.String() < scored[j].Chunk.Id.String()
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return entity.ClampSimilarity(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
