package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/llm"
	"legal-rag-be/pkg/llm/llmtest"
	"legal-rag-be/pkg/rag"
	"legal-rag-be/pkg/rag/progress"
	"legal-rag-be/pkg/rag/ranking"
	"legal-rag-be/pkg/rag/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClassifier rag.Intent

func (f fixedClassifier) Classify(context.Context, string) rag.Intent { return rag.Intent(f) }

type fixedExpander []string

func (f fixedExpander) Expand(context.Context, string) []string { return f }

type fakeRetriever struct {
	mu      sync.Mutex
	calls   int
	queries []string
	byQuery map[string][]rag.RetrievalMatch
}

func (f *fakeRetriever) RetrieveAll(_ context.Context, queries []string, _ int) []rag.RetrievalMatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, queries...)
	var out []rag.RetrievalMatch
	for _, q := range queries {
		out = append(out, f.byQuery[q]...)
	}
	return out
}

const bailText = "Bail is the conditional release of an accused person pending trial."

func bailMatch(id string, score float64) rag.RetrievalMatch {
	return rag.RetrievalMatch{
		ID:    id,
		Score: score,
		Metadata: rag.Metadata{
			Title:      "Criminal Procedure Code",
			Year:       "1973",
			PageNumber: "12",
			Text:       bailText,
			SourceURL:  "https://docs.example/crpc-1973.pdf",
		},
	}
}

type harness struct {
	pipeline  *Pipeline
	retriever *fakeRetriever
	llm       *llmtest.Provider
	recorder  *progress.Recorder
}

func newHarness(intent rag.Intent, queries []string, byQuery map[string][]rag.RetrievalMatch, llmProvider *llmtest.Provider) *harness {
	log := logger.NewNopLogger()
	retriever := &fakeRetriever{byQuery: byQuery}
	p := New(
		fixedClassifier(intent),
		fixedExpander(queries),
		retriever,
		ranking.NewAggregator(ranking.DefaultConfig()),
		response.NewGenerator(llmProvider, time.Second, log),
		Config{TopKPerQuery: 3},
		log,
	)
	return &harness{pipeline: p, retriever: retriever, llm: llmProvider, recorder: progress.NewRecorder()}
}

func (h *harness) run(question string, history []rag.Turn) *Result {
	reporter := progress.NewReporter(h.recorder, "client", logger.NewNopLogger())
	return h.pipeline.Run(context.Background(), Request{Question: question, History: history}, reporter)
}

func TestRun_NonLegalIntentsSkipRetrievalAndGeneration(t *testing.T) {
	tests := []struct {
		intent rag.Intent
		want   string
	}{
		{rag.IntentGreeting, response.GreetingMessage},
		{rag.IntentClarificationNeeded, response.ClarificationMessage},
		{rag.IntentIrrelevant, response.IrrelevantMessage},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			h := newHarness(tt.intent, []string{"x"}, nil, llmtest.Static("should not be called"))

			res := h.run("Hi", nil)

			assert.Equal(t, tt.intent, res.Intent)
			assert.Equal(t, tt.want, res.Summary)
			assert.Equal(t, OutcomeShortCircuit, res.Outcome)
			assert.Nil(t, res.Citation)
			assert.Nil(t, res.MatchScore)
			assert.Nil(t, res.OriginalText)
			assert.Equal(t, 0, h.retriever.calls)
			assert.Equal(t, 0, h.llm.CallCount())
			assert.Equal(t, []TurnState{StateStart, StateIntentClassified, StateShortCircuitAnswered, StateDone}, res.Path)
			assert.Equal(t, []progress.Step{progress.StepStart, progress.StepIntent}, h.recorder.Steps("client"))
		})
	}
}

func TestRun_DiscussionUsesHistoryNotRetrieval(t *testing.T) {
	h := newHarness(rag.IntentDiscussion, nil, nil, llmtest.Static("Yes, as said earlier, bail can be cancelled."))
	history := []rag.Turn{{Question: "What is bail?", AnswerText: "Bail is a release."}}

	res := h.run("Can it be cancelled?", history)

	assert.Equal(t, OutcomeShortCircuit, res.Outcome)
	assert.Equal(t, "Yes, as said earlier, bail can be cancelled.", res.Summary)
	assert.Equal(t, 0, h.retriever.calls)
	require.Equal(t, 1, h.llm.CallCount())
	assert.Contains(t, h.llm.Calls()[0], "What is bail?")
}

func TestRun_DuplicateExcerptKeepsHighestScore(t *testing.T) {
	byQuery := map[string][]rag.RetrievalMatch{
		"bail definition":  {bailMatch("q1", 0.62)},
		"bail meaning law": {bailMatch("q2", 0.81), bailMatch("q2-low", 0.40)},
	}
	h := newHarness(rag.IntentLegalQuery, []string{"bail definition", "bail meaning law"}, byQuery, llmtest.Static("Bail is a conditional release (Criminal Procedure Code, p. 12)."))

	res := h.run("What is bail?", nil)

	require.Len(t, res.Ranked, 1)
	assert.Equal(t, "q2", res.Ranked[0].ID)
	assert.Equal(t, 0.81, *res.MatchScore)
	assert.Equal(t, OutcomeAnswered, res.Outcome)
	assert.Equal(t, "Criminal Procedure Code", res.Citation.Title)
	assert.Equal(t, "1973", res.Citation.Year)
	assert.Equal(t, "12", res.Citation.PageNumber)
	assert.Equal(t, bailText, *res.OriginalText)
	assert.Equal(t, "Bail is a conditional release (Criminal Procedure Code, p. 12).", res.Summary)
	assert.Equal(t, []TurnState{StateStart, StateIntentClassified, StateRagSearching, StateRagRanking, StateRagAnswered, StateDone}, res.Path)
	assert.Equal(t, []progress.Step{
		progress.StepStart, progress.StepIntent, progress.StepSearch, progress.StepEmbedding,
		progress.StepFiltering, progress.StepRanking, progress.StepSummary,
	}, h.recorder.Steps("client"))
}

func TestRun_NothingAboveThresholdSkipsGeneration(t *testing.T) {
	byQuery := map[string][]rag.RetrievalMatch{
		"bail": {bailMatch("a", 0.41), bailMatch("b", 0.2)},
	}
	h := newHarness(rag.IntentLegalQuery, []string{"bail"}, byQuery, llmtest.Static("unused"))

	res := h.run("What is bail?", nil)

	assert.Equal(t, OutcomeNoContext, res.Outcome)
	assert.Equal(t, response.NoRelevantDocumentsMessage, res.Summary)
	assert.Empty(t, res.Ranked)
	assert.Nil(t, res.Citation)
	assert.Nil(t, res.MatchScore)
	assert.Nil(t, res.OriginalText)
	assert.Equal(t, 0, h.llm.CallCount())
	assert.NotContains(t, h.recorder.Steps("client"), progress.StepSummary)
}

func TestRun_BlockedGenerationKeepsCitation(t *testing.T) {
	byQuery := map[string][]rag.RetrievalMatch{"bail": {bailMatch("a", 0.9)}}
	h := newHarness(rag.IntentLegalQuery, []string{"bail"}, byQuery, llmtest.Failing(fmt.Errorf("gemini: %w", llm.ErrBlocked)))

	res := h.run("What is bail?", nil)

	assert.Equal(t, OutcomeBlocked, res.Outcome)
	assert.Equal(t, response.BlockedMessage, res.Summary)
	assert.ErrorIs(t, res.Err, rag.ErrBlockedGeneration)
	require.NotNil(t, res.Citation)
	assert.Equal(t, StateDone, res.Path[len(res.Path)-1])
}

func TestRun_GenerationFailure(t *testing.T) {
	byQuery := map[string][]rag.RetrievalMatch{"bail": {bailMatch("a", 0.9)}}
	h := newHarness(rag.IntentLegalQuery, []string{"bail"}, byQuery, llmtest.Failing(context.DeadlineExceeded))

	res := h.run("What is bail?", nil)

	assert.Equal(t, OutcomeGenerationFailed, res.Outcome)
	assert.Equal(t, response.GenerationFailedMessage, res.Summary)
	assert.ErrorIs(t, res.Err, rag.ErrGenerationFailed)
}

func TestRun_EmptyExpansionSearchesWithQuestion(t *testing.T) {
	h := newHarness(rag.IntentLegalQuery, nil, nil, llmtest.Static("unused"))

	res := h.run("What is bail?", nil)

	assert.Equal(t, []string{"What is bail?"}, res.Queries)
	assert.Equal(t, []string{"What is bail?"}, h.retriever.queries)
}

func TestRun_InvalidClassifierOutputIsDefault(t *testing.T) {
	h := newHarness(rag.Intent("SOMETHING"), []string{"q"}, nil, llmtest.Static("unused"))

	res := h.run("What is bail?", nil)

	assert.Equal(t, rag.DefaultIntent, res.Intent)
	assert.Equal(t, 1, h.retriever.calls)
}

func TestResult_Turn(t *testing.T) {
	score := 0.8
	res := &Result{Intent: rag.IntentLegalQuery, Summary: "s", Citation: &rag.Citation{Title: "T"}, MatchScore: &score}

	turn := res.Turn("q")

	assert.Equal(t, "q", turn.Question)
	assert.Equal(t, "s", turn.AnswerText)
	assert.Equal(t, "T", turn.Citation.Title)
	assert.Equal(t, 0.8, *turn.MatchScore)
}

func TestMachine_RejectsIllegalTransition(t *testing.T) {
	m := newMachine()
	require.NoError(t, m.advance(StateIntentClassified))
	assert.Error(t, m.advance(StateRagRanking))
	assert.Error(t, m.advance(StateStart))
	require.NoError(t, m.advance(StateShortCircuitAnswered))
	require.NoError(t, m.advance(StateDone))
	assert.Error(t, m.advance(StateStart))
}
