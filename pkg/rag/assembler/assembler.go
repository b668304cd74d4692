package assembler

import (
	"strings"

	"legal-rag-be/pkg/rag"
)

// Assemble turns the ranked context into the blocks handed to the answer
// generator. Score and id are dropped. Matches without text are left out of
// the prompt; callers still cite them from the ranked slice itself.
func Assemble(ranked []rag.RetrievalMatch) []rag.ContextBlock {
	blocks := make([]rag.ContextBlock, 0, len(ranked))
	for _, m := range ranked {
		if strings.TrimSpace(m.Metadata.Text) == "" {
			continue
		}
		blocks = append(blocks, rag.ContextBlock{
			Title:      m.Metadata.Title,
			Year:       m.Metadata.Year,
			PageNumber: m.Metadata.PageNumber,
			Text:       m.Metadata.Text,
		})
	}
	return blocks
}

// TopCitation returns the citation of the highest scoring member of ranked,
// which is its first element. Nil when ranked is empty.
func TopCitation(ranked []rag.RetrievalMatch) (*rag.Citation, *float64) {
	if len(ranked) == 0 {
		return nil, nil
	}
	top := ranked[0]
	score := top.Score
	return rag.CitationFrom(top), &score
}
