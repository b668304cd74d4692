package pipeline

import (
	"context"
	"errors"
	"fmt"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/rag"
	"legal-rag-be/pkg/rag/assembler"
	"legal-rag-be/pkg/rag/progress"
	"legal-rag-be/pkg/rag/response"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const module = "RAG-PIPELINE"

var tracer = otel.Tracer("legal-rag-be/pkg/rag/pipeline")

type IntentClassifier interface {
	Classify(ctx context.Context, question string) rag.Intent
}

type QueryExpander interface {
	Expand(ctx context.Context, question string) []string
}

type Retriever interface {
	RetrieveAll(ctx context.Context, queries []string, topK int) []rag.RetrievalMatch
}

type Aggregator interface {
	Aggregate(matches []rag.RetrievalMatch) []rag.RetrievalMatch
}

type AnswerGenerator interface {
	Summarize(ctx context.Context, question string, blocks []rag.ContextBlock) (string, error)
	Discuss(ctx context.Context, question string, history []rag.Turn) (string, error)
}

// Outcome tells the caller which terminal state produced the summary.
type Outcome string

const (
	OutcomeAnswered         Outcome = "ANSWERED"
	OutcomeShortCircuit     Outcome = "SHORT_CIRCUIT"
	OutcomeNoContext        Outcome = "NO_CONTEXT"
	OutcomeBlocked          Outcome = "BLOCKED"
	OutcomeGenerationFailed Outcome = "GENERATION_FAILED"
)

// Request is the input of one turn. History is only read for DISCUSSION.
type Request struct {
	Question string
	History  []rag.Turn
}

// Result is everything the caller needs to build the response and the Turn.
type Result struct {
	Intent     rag.Intent
	Outcome    Outcome
	Summary    string
	Queries    []string
	Ranked     []rag.RetrievalMatch
	Citation   *rag.Citation
	MatchScore *float64
	// OriginalText is the excerpt text of the cited match, if any.
	OriginalText *string
	Path         []TurnState
	// Err is rag.ErrBlockedGeneration or wraps rag.ErrGenerationFailed.
	Err error
}

// Turn converts the result into the record appended to a conversation.
func (r *Result) Turn(question string) rag.Turn {
	return rag.Turn{
		Question:   question,
		Intent:     r.Intent,
		AnswerText: r.Summary,
		Citation:   r.Citation,
		MatchScore: r.MatchScore,
	}
}

type Config struct {
	TopKPerQuery int
}

// Pipeline runs one question through classification, retrieval, ranking and
// answer generation. It holds no per-turn state and is safe to share.
type Pipeline struct {
	classifier IntentClassifier
	expander   QueryExpander
	retriever  Retriever
	aggregator Aggregator
	generator  AnswerGenerator
	cfg        Config
	logger     logger.ILogger
}

func New(
	classifier IntentClassifier,
	expander QueryExpander,
	retriever Retriever,
	aggregator Aggregator,
	generator AnswerGenerator,
	cfg Config,
	logger logger.ILogger,
) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		expander:   expander,
		retriever:  retriever,
		aggregator: aggregator,
		generator:  generator,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes the turn and reports start through summary on reporter.
// finalizing and complete are left to the caller, which persists the turn
// first. Run never returns an error: failures are folded into Result.
func (p *Pipeline) Run(ctx context.Context, req Request, reporter *progress.Reporter) *Result {
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	m := newMachine()
	res := &Result{}

	reporter.Emit(progress.StepStart, "Processing your question")

	res.Intent = p.classify(ctx, req.Question)
	p.advance(m, StateIntentClassified)
	reporter.SetIntent(res.Intent)
	reporter.Emit(progress.StepIntent, fmt.Sprintf("Question classified as %s", res.Intent))
	span.SetAttributes(attribute.String("rag.intent", string(res.Intent)))

	if res.Intent == rag.IntentLegalQuery {
		p.runRetrieval(ctx, req, reporter, m, res)
	} else {
		p.runShortCircuit(ctx, req, m, res)
	}

	p.advance(m, StateDone)
	res.Path = m.path
	span.SetAttributes(attribute.String("rag.outcome", string(res.Outcome)))

	p.logger.Info(module, "Turn computed", map[string]interface{}{
		"intent":  res.Intent,
		"outcome": res.Outcome,
		"ranked":  len(res.Ranked),
	})
	return res
}

func (p *Pipeline) classify(ctx context.Context, question string) rag.Intent {
	ctx, span := tracer.Start(ctx, "pipeline.classify")
	defer span.End()

	intent := p.classifier.Classify(ctx, question)
	if !intent.IsValid() {
		return rag.DefaultIntent
	}
	return intent
}

func (p *Pipeline) runShortCircuit(ctx context.Context, req Request, m *machine, res *Result) {
	p.advance(m, StateShortCircuitAnswered)
	res.Outcome = OutcomeShortCircuit

	if text, ok := response.CannedAnswer(res.Intent); ok {
		res.Summary = text
		return
	}

	// DISCUSSION is the only non-canned short circuit
	ctx, span := tracer.Start(ctx, "pipeline.discuss")
	defer span.End()

	text, err := p.generator.Discuss(ctx, req.Question, req.History)
	if err != nil {
		p.applyGenerationError(res, err)
		return
	}
	res.Summary = text
}

func (p *Pipeline) runRetrieval(ctx context.Context, req Request, reporter *progress.Reporter, m *machine, res *Result) {
	p.advance(m, StateRagSearching)

	reporter.Emit(progress.StepSearch, "Preparing search queries")
	expandCtx, expandSpan := tracer.Start(ctx, "pipeline.expand")
	res.Queries = p.expander.Expand(expandCtx, req.Question)
	if len(res.Queries) == 0 {
		res.Queries = []string{req.Question}
	}
	expandSpan.SetAttributes(attribute.Int("rag.queries", len(res.Queries)))
	expandSpan.End()

	reporter.Emit(progress.StepEmbedding, fmt.Sprintf("Searching documents with %d queries", len(res.Queries)))
	retrieveCtx, retrieveSpan := tracer.Start(ctx, "pipeline.retrieve")
	all := p.retriever.RetrieveAll(retrieveCtx, res.Queries, p.cfg.TopKPerQuery)
	retrieveSpan.SetAttributes(attribute.Int("rag.matches", len(all)))
	retrieveSpan.End()

	reporter.Emit(progress.StepFiltering, fmt.Sprintf("Filtering %d candidate excerpts", len(all)))
	p.advance(m, StateRagRanking)
	res.Ranked = p.aggregator.Aggregate(all)
	reporter.Emit(progress.StepRanking, fmt.Sprintf("Selected %d relevant excerpts", len(res.Ranked)))

	p.advance(m, StateRagAnswered)

	if len(res.Ranked) == 0 {
		res.Outcome = OutcomeNoContext
		res.Summary = response.NoRelevantDocumentsMessage
		return
	}

	res.Citation, res.MatchScore = assembler.TopCitation(res.Ranked)
	if text := res.Ranked[0].Metadata.Text; text != "" {
		res.OriginalText = &text
	}

	reporter.Emit(progress.StepSummary, "Writing the answer")
	genCtx, genSpan := tracer.Start(ctx, "pipeline.summarize")
	defer genSpan.End()

	// Excerpts without text stay cited but are not shown to the model.
	text, err := p.generator.Summarize(genCtx, req.Question, assembler.Assemble(res.Ranked))
	if err != nil {
		genSpan.RecordError(err)
		p.applyGenerationError(res, err)
		return
	}
	res.Outcome = OutcomeAnswered
	res.Summary = text
}

func (p *Pipeline) applyGenerationError(res *Result, err error) {
	res.Err = err
	if errors.Is(err, rag.ErrBlockedGeneration) {
		res.Outcome = OutcomeBlocked
		res.Summary = response.BlockedMessage
		return
	}
	if !errors.Is(err, rag.ErrGenerationFailed) {
		res.Err = fmt.Errorf("%w: %w", rag.ErrGenerationFailed, err)
	}
	res.Outcome = OutcomeGenerationFailed
	res.Summary = response.GenerationFailedMessage
}

func (p *Pipeline) advance(m *machine, to TurnState) {
	if err := m.advance(to); err != nil {
		// only reachable through a programming error in Run
		p.logger.Error(module, "Turn state machine violated", map[string]interface{}{"error": err.Error()})
	}
}
