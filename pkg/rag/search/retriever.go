package search

import (
	"context"
	"time"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/embedding"
	"legal-rag-be/pkg/rag"

	"golang.org/x/sync/errgroup"
)

const (
	module = "RAG-SEARCH"

	DefaultTopK        = 3
	DefaultConcurrency = 4
)

// VectorStore is the nearest-neighbour query over indexed excerpts. Scores
// are cosine similarities in [0,1].
type VectorStore interface {
	Search(ctx context.Context, vector []float32, topK int) ([]rag.RetrievalMatch, error)
}

// Config encapsulates search parameters
type Config struct {
	TopK             int
	Concurrency      int // 1 runs the queries one after another
	EmbeddingTimeout time.Duration
	SearchTimeout    time.Duration
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		TopK:             DefaultTopK,
		Concurrency:      DefaultConcurrency,
		EmbeddingTimeout: 10 * time.Second,
		SearchTimeout:    10 * time.Second,
	}
}

// Retriever embeds a search query and asks the vector store for neighbours.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	store             VectorStore
	cfg               Config
	logger            logger.ILogger
}

func NewRetriever(embeddingProvider embedding.EmbeddingProvider, store VectorStore, cfg Config, logger logger.ILogger) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Retriever{
		embeddingProvider: embeddingProvider,
		store:             store,
		cfg:               cfg,
		logger:            logger,
	}
}

func (r *Retriever) Config() Config {
	return r.cfg
}

// Retrieve never returns an error. A failing embedding or store call is
// logged and yields an empty list so sibling queries still count.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []rag.RetrievalMatch {
	if topK <= 0 {
		topK = r.cfg.TopK
	}

	vector, err := r.embed(ctx, query)
	if err != nil {
		r.logger.Warn(module, "Embedding failed, skipping query", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return []rag.RetrievalMatch{}
	}

	searchCtx, cancel := withTimeout(ctx, r.cfg.SearchTimeout)
	defer cancel()

	matches, err := r.store.Search(searchCtx, vector, topK)
	if err != nil {
		r.logger.Warn(module, "Vector search failed, skipping query", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return []rag.RetrievalMatch{}
	}

	r.logger.Debug(module, "Vector search done", map[string]interface{}{
		"query":   query,
		"matches": len(matches),
	})
	return matches
}

// RetrieveAll runs Retrieve for every query and concatenates the results in
// query order. Queries run concurrently up to Config.Concurrency; the output
// does not depend on completion order.
func (r *Retriever) RetrieveAll(ctx context.Context, queries []string, topK int) []rag.RetrievalMatch {
	perQuery := make([][]rag.RetrievalMatch, len(queries))

	if r.cfg.Concurrency == 1 {
		for i, q := range queries {
			perQuery[i] = r.Retrieve(ctx, q, topK)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.cfg.Concurrency)
		for i, q := range queries {
			i, q := i, q
			g.Go(func() error {
				perQuery[i] = r.Retrieve(gctx, q, topK)
				return nil // non-fatal, Retrieve already logged
			})
		}
		_ = g.Wait()
	}

	var all []rag.RetrievalMatch
	for _, m := range perQuery {
		all = append(all, m...)
	}
	return all
}

func (r *Retriever) embed(ctx context.Context, query string) ([]float32, error) {
	embedCtx, cancel := withTimeout(ctx, r.cfg.EmbeddingTimeout)
	defer cancel()

	res, err := r.embeddingProvider.Generate(embedCtx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return res.Vector(), nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
