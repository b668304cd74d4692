package memory

import (
	"context"
	"sync"
	"testing"

	"legal-rag-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationRepository_CreateAndName(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewConversationRepository(store)

	conv := &entity.Conversation{OwnerId: "user-1"}
	require.NoError(t, repo.Create(ctx, conv))
	assert.NotEqual(t, uuid.Nil, conv.Id)
	assert.False(t, conv.CreatedAt.IsZero())

	ok, err := repo.SetNameIfEmpty(ctx, conv.Id, "Tenancy deposits")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetNameIfEmpty(ctx, conv.Id, "Something else")
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindById(ctx, conv.Id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Tenancy deposits", found.Name)
	assert.Equal(t, "user-1", found.OwnerId)

	missing, err := repo.FindById(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestConversationTurnRepository_SequenceIsDense(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewConversationTurnRepository(store)
	convID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Append(ctx, &entity.ConversationTurn{ConversationId: convID, Question: "q"})
		}()
	}
	wg.Wait()

	turns, err := repo.FindByConversationId(ctx, convID)
	require.NoError(t, err)
	require.Len(t, turns, 20)
	for i, tr := range turns {
		assert.Equal(t, i, tr.Sequence)
	}

	count, err := repo.CountByConversationId(ctx, convID)
	require.NoError(t, err)
	assert.Equal(t, 20, count)

	empty, err := repo.FindByConversationId(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)

	count, err = repo.CountByConversationId(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLegalRepositories_SearchSimilar(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	docs := NewLegalDocumentRepository(store)
	chunks := NewLegalChunkRepository(store)

	doc := &entity.LegalDocument{Title: "Housing Act", Year: "2004", PdfUrl: "https://example.org/housing.pdf"}
	require.NoError(t, docs.Create(ctx, doc))
	assert.Error(t, docs.Create(ctx, &entity.LegalDocument{Title: "Housing Act", Year: "2004"}))

	require.NoError(t, chunks.CreateBulk(ctx, []*entity.LegalChunk{
		{DocumentId: doc.Id, PageNumber: "1", Text: "aligned", Embedding: []float32{1, 0}},
		{DocumentId: doc.Id, PageNumber: "2", Text: "diagonal", Embedding: []float32{1, 1}},
		{DocumentId: doc.Id, PageNumber: "3", Text: "orthogonal", Embedding: []float32{0, 1}},
		{DocumentId: doc.Id, PageNumber: "4", Text: "wrong dims", Embedding: []float32{1, 0, 0}},
	}))

	hits, err := chunks.SearchSimilar(ctx, []float32{2, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "aligned", hits[0].Chunk.Text)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
	assert.Equal(t, "diagonal", hits[1].Chunk.Text)
	assert.InDelta(t, 0.7071, hits[1].Similarity, 1e-3)
	require.NotNil(t, hits[0].Document)
	assert.Equal(t, "https://example.org/housing.pdf", hits[0].Document.PdfUrl)

	found, err := docs.FindByTitleYear(ctx, "Housing Act", "2004")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, doc.Id, found.Id)

	missing, err := docs.FindByTitleYear(ctx, "Housing Act", "1999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
		{name: "same direction", a: []float32{3, 0}, b: []float32{1, 0}, want: 1},
		{name: "opposed clamps to zero", a: []float32{-1, 0}, b: []float32{1, 0}, want: 0},
		{name: "obtuse clamps to zero", a: []float32{-1, 1}, b: []float32{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
