package entity

import (
	"time"

	"github.com/google/uuid"
)

type LegalDocument struct {
	Id        uuid.UUID
	Title     string
	Year      string
	PdfUrl    string
	CreatedAt time.Time
}

type LegalChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	PageNumber string
	Text       string
	Embedding  []float32
	CreatedAt  time.Time
}

// ScoredLegalChunk is a similarity search hit with its parent document.
// Similarity is in [0,1]; opposed vectors score 0, not negative.
type ScoredLegalChunk struct {
	Chunk      *LegalChunk
	Document   *LegalDocument
	Similarity float64
}

func ClampSimilarity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
