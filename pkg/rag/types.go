package rag

import (
	"errors"
	"time"
)

// Intent is the coarse category assigned to a question. It decides which
// branch of the pipeline runs for a turn.
type Intent string

const (
	IntentGreeting            Intent = "GREETING"
	IntentLegalQuery          Intent = "LEGAL_QUERY"
	IntentClarificationNeeded Intent = "CLARIFICATION_NEEDED"
	IntentIrrelevant          Intent = "IRRELEVANT"
	IntentDiscussion          Intent = "DISCUSSION"
)

// DefaultIntent is used whenever a classification cannot be trusted.
const DefaultIntent = IntentLegalQuery

var allIntents = []Intent{
	IntentGreeting,
	IntentLegalQuery,
	IntentClarificationNeeded,
	IntentIrrelevant,
	IntentDiscussion,
}

// AllIntents returns the closed label set in a stable order.
func AllIntents() []Intent {
	out := make([]Intent, len(allIntents))
	copy(out, allIntents)
	return out
}

// ParseIntent matches raw against the label set. The match is exact and
// case-sensitive.
func ParseIntent(raw string) (Intent, bool) {
	for _, i := range allIntents {
		if string(i) == raw {
			return i, true
		}
	}
	return "", false
}

func (i Intent) IsValid() bool {
	_, ok := ParseIntent(string(i))
	return ok
}

func (i Intent) String() string {
	return string(i)
}

// Metadata is the payload stored next to every indexed excerpt.
type Metadata struct {
	Title      string `json:"title"`
	Year       string `json:"year"`
	PageNumber string `json:"pageNumber"`
	Text       string `json:"text"`
	SourceURL  string `json:"sourceUrl"`
}

// RetrievalMatch is one scored candidate excerpt returned by a vector query.
type RetrievalMatch struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// ContextBlock is an excerpt as handed to the answer generator. Retrieval-only
// fields (id, score) are not carried.
type ContextBlock struct {
	Title      string
	Year       string
	PageNumber string
	Text       string
}

// Citation points the reader at the excerpt that backs an answer.
type Citation struct {
	Title      string `json:"title"`
	Year       string `json:"year"`
	PageNumber string `json:"pageNumber"`
	SourceURL  string `json:"sourceUrl"`
}

// CitationFrom builds the citation for a match.
func CitationFrom(m RetrievalMatch) *Citation {
	return &Citation{
		Title:      m.Metadata.Title,
		Year:       m.Metadata.Year,
		PageNumber: m.Metadata.PageNumber,
		SourceURL:  m.Metadata.SourceURL,
	}
}

// Turn is one question/answer exchange. Turns are never mutated once stored.
type Turn struct {
	Question   string    `json:"question"`
	Intent     Intent    `json:"intent"`
	AnswerText string    `json:"answerText"`
	Citation   *Citation `json:"citation,omitempty"`
	MatchScore *float64  `json:"matchScore,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

var (
	// ErrBlockedGeneration means the model refused to answer for safety or
	// policy reasons. It is not retryable.
	ErrBlockedGeneration = errors.New("generation blocked by model safety policy")

	// ErrGenerationFailed wraps transport errors and timeouts of the answer
	// generation call.
	ErrGenerationFailed = errors.New("answer generation failed")
)
