package embedding

import "context"

// Task types understood by providers that distinguish query and document
// embeddings. Providers that do not care ignore them.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// Vector is a shorthand for the embedding values.
func (r *EmbeddingResponse) Vector() []float32 {
	if r == nil {
		return nil
	}
	return r.Embedding.Values
}

// EmbeddingProvider turns text into a vector. Vectors of one provider are
// comparable with cosine similarity.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}
