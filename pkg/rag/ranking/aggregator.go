package ranking

import (
	"sort"

	"legal-rag-be/pkg/rag"
)

const (
	DefaultScoreThreshold    = 0.55
	DefaultFinalContextSize  = 3
	DefaultDedupPrefixLength = 100
)

// DedupKey identifies the same underlying excerpt across search queries.
// Being a struct, equality is field-wise and a separator inside a title can
// never make two different excerpts collide.
type DedupKey struct {
	Title      string
	Year       string
	PageNumber string
	TextPrefix string
}

// Config encapsulates aggregation parameters
type Config struct {
	ScoreThreshold    float64
	FinalContextSize  int
	DedupPrefixLength int
}

// DefaultConfig returns default aggregation configuration
func DefaultConfig() Config {
	return Config{
		ScoreThreshold:    DefaultScoreThreshold,
		FinalContextSize:  DefaultFinalContextSize,
		DedupPrefixLength: DefaultDedupPrefixLength,
	}
}

// Aggregator merges the matches of every search query into the ranked context.
type Aggregator struct {
	cfg Config
}

func NewAggregator(cfg Config) *Aggregator {
	if cfg.FinalContextSize <= 0 {
		cfg.FinalContextSize = DefaultFinalContextSize
	}
	if cfg.DedupPrefixLength <= 0 {
		cfg.DedupPrefixLength = DefaultDedupPrefixLength
	}
	return &Aggregator{cfg: cfg}
}

func (a *Aggregator) Config() Config {
	return a.cfg
}

// KeyOf computes the dedup key of a match. The prefix is counted in runes so
// multi-byte text is never cut mid-character.
func (a *Aggregator) KeyOf(m rag.RetrievalMatch) DedupKey {
	return DedupKey{
		Title:      m.Metadata.Title,
		Year:       m.Metadata.Year,
		PageNumber: m.Metadata.PageNumber,
		TextPrefix: prefix(m.Metadata.Text, a.cfg.DedupPrefixLength),
	}
}

// Aggregate runs filter, key, max-by-key, sort and truncate in that order.
// The threshold is applied first so it is a hard floor. The result is
// sorted by descending score and running Aggregate on it again is a no-op.
func (a *Aggregator) Aggregate(matches []rag.RetrievalMatch) []rag.RetrievalMatch {
	best := make(map[DedupKey]int, len(matches))
	kept := make([]rag.RetrievalMatch, 0, len(matches))

	for _, m := range matches {
		if m.Score < a.cfg.ScoreThreshold {
			continue
		}
		key := a.KeyOf(m)
		idx, seen := best[key]
		if !seen {
			best[key] = len(kept)
			kept = append(kept, m)
			continue
		}
		// strictly greater: on a tie the first one encountered stays
		if m.Score > kept[idx].Score {
			kept[idx] = m
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	if len(kept) > a.cfg.FinalContextSize {
		kept = kept[:a.cfg.FinalContextSize]
	}
	return kept
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
