package ranking

import (
	"strings"
	"testing"

	"legal-rag-be/pkg/rag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func match(id string, score float64, title, year, page, text string) rag.RetrievalMatch {
	return rag.RetrievalMatch{
		ID:    id,
		Score: score,
		Metadata: rag.Metadata{
			Title:      title,
			Year:       year,
			PageNumber: page,
			Text:       text,
		},
	}
}

func TestAggregate(t *testing.T) {
	bail := "Bail is the conditional release of an accused person pending trial."

	tests := []struct {
		name    string
		input   []rag.RetrievalMatch
		wantIDs []string
	}{
		{
			name: "same excerpt across queries keeps the best score",
			input: []rag.RetrievalMatch{
				match("q1-a", 0.62, "Criminal Procedure Code", "1973", "12", bail),
				match("q2-a", 0.81, "Criminal Procedure Code", "1973", "12", bail),
				match("q3-a", 0.40, "Criminal Procedure Code", "1973", "12", bail),
			},
			wantIDs: []string{"q2-a"},
		},
		{
			name: "everything below threshold yields empty context",
			input: []rag.RetrievalMatch{
				match("a", 0.54, "A", "2000", "1", "x"),
				match("b", 0.10, "B", "2000", "1", "y"),
			},
			wantIDs: []string{},
		},
		{
			name: "threshold is inclusive",
			input: []rag.RetrievalMatch{
				match("a", 0.55, "A", "2000", "1", "x"),
			},
			wantIDs: []string{"a"},
		},
		{
			name: "ties keep the first encountered",
			input: []rag.RetrievalMatch{
				match("first", 0.70, "A", "2000", "1", "x"),
				match("second", 0.70, "A", "2000", "1", "x"),
			},
			wantIDs: []string{"first"},
		},
		{
			name: "sorted descending and truncated",
			input: []rag.RetrievalMatch{
				match("a", 0.60, "A", "2000", "1", "a"),
				match("b", 0.90, "B", "2000", "1", "b"),
				match("c", 0.75, "C", "2000", "1", "c"),
				match("d", 0.80, "D", "2000", "1", "d"),
			},
			wantIDs: []string{"b", "d", "c"},
		},
		{
			name: "different page is a different excerpt",
			input: []rag.RetrievalMatch{
				match("p1", 0.70, "A", "2000", "1", "same text"),
				match("p2", 0.65, "A", "2000", "2", "same text"),
			},
			wantIDs: []string{"p1", "p2"},
		},
		{
			name: "separator characters in titles do not collide",
			input: []rag.RetrievalMatch{
				match("x", 0.70, "A|2000", "1", "1", "t"),
				match("y", 0.69, "A", "2000|1", "1", "t"),
			},
			wantIDs: []string{"x", "y"},
		},
	}

	agg := NewAggregator(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.Aggregate(tt.input)
			ids := make([]string, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestAggregate_TextPrefixDedup(t *testing.T) {
	agg := NewAggregator(Config{ScoreThreshold: 0.5, FinalContextSize: 3, DedupPrefixLength: 10})

	got := agg.Aggregate([]rag.RetrievalMatch{
		match("a", 0.7, "T", "2001", "4", "0123456789 tail one"),
		match("b", 0.8, "T", "2001", "4", "0123456789 tail two"),
		match("c", 0.6, "T", "2001", "4", "9876543210 other"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestAggregate_Properties(t *testing.T) {
	agg := NewAggregator(DefaultConfig())

	var input []rag.RetrievalMatch
	titles := []string{"Evidence Act", "Penal Code", "Contract Act"}
	for i := 0; i < 30; i++ {
		score := float64((i*37)%100) / 100
		input = append(input, match(
			strings.Repeat("m", i%4+1),
			score,
			titles[i%3],
			"1872",
			string(rune('1'+i%5)),
			strings.Repeat("section text ", i%2+1),
		))
	}

	got := agg.Aggregate(input)
	require.LessOrEqual(t, len(got), DefaultFinalContextSize)

	seen := map[DedupKey]bool{}
	for i, m := range got {
		assert.GreaterOrEqual(t, m.Score, DefaultScoreThreshold)
		key := agg.KeyOf(m)
		assert.False(t, seen[key], "duplicate key %+v", key)
		seen[key] = true
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Score, m.Score)
		}
	}

	assert.Equal(t, got, agg.Aggregate(got), "aggregate must be idempotent")
}

func TestKeyOf_RunePrefix(t *testing.T) {
	agg := NewAggregator(Config{ScoreThreshold: 0, FinalContextSize: 3, DedupPrefixLength: 3})
	key := agg.KeyOf(match("a", 1, "T", "Y", "P", "§§§§§"))
	assert.Equal(t, "§§§", key.TextPrefix)
}

func TestNewAggregator_Defaults(t *testing.T) {
	agg := NewAggregator(Config{ScoreThreshold: 0.3})
	assert.Equal(t, DefaultFinalContextSize, agg.Config().FinalContextSize)
	assert.Equal(t, DefaultDedupPrefixLength, agg.Config().DedupPrefixLength)
	assert.Equal(t, 0.3, agg.Config().ScoreThreshold)
}
