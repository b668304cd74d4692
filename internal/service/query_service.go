package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"legal-rag-be/internal/dto"
	"legal-rag-be/internal/entity"
	"legal-rag-be/internal/mapper"
	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/internal/repository/unitofwork"
	"legal-rag-be/pkg/events"
	"legal-rag-be/pkg/rag"
	"legal-rag-be/pkg/rag/conversation"
	"legal-rag-be/pkg/rag/pipeline"
	"legal-rag-be/pkg/rag/progress"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const queryModule = "QUERY"

var (
	ErrInvalidQuestion      = errors.New("question must not be empty")
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrPersistence is returned together with a complete response: the
	// answer was computed but the turn was not stored.
	ErrPersistence = errors.New("turn could not be recorded")
)

// TurnRunner is implemented by *pipeline.Pipeline.
type TurnRunner interface {
	Run(ctx context.Context, req pipeline.Request, reporter *progress.Reporter) *pipeline.Result
}

// ConversationNamer is implemented by *response.Generator.
type ConversationNamer interface {
	NameConversation(ctx context.Context, question string) string
}

type IQueryService interface {
	// Ask answers one question. On rag.ErrBlockedGeneration,
	// rag.ErrGenerationFailed and ErrPersistence the response is still
	// returned alongside the error.
	Ask(ctx context.Context, ownerID, clientID string, request *dto.QueryRequest) (*dto.QueryResponse, error)
	GetConversation(ctx context.Context, ownerID, conversationID string) (*dto.ConversationResponse, error)
}

type queryService struct {
	uowFactory unitofwork.RepositoryFactory
	runner     TurnRunner
	namer      ConversationNamer
	state      *conversation.State
	documents  *DocumentLookup
	publisher  ITurnEventPublisher
	sink       progress.Sink
	mapper     *mapper.ConversationMapper
	logger     logger.ILogger
	now        func() time.Time
}

func NewQueryService(
	uowFactory unitofwork.RepositoryFactory,
	runner TurnRunner,
	namer ConversationNamer,
	state *conversation.State,
	documents *DocumentLookup,
	publisher ITurnEventPublisher,
	sink progress.Sink,
	logger logger.ILogger,
) IQueryService {
	return &queryService{
		uowFactory: uowFactory,
		runner:     runner,
		namer:      namer,
		state:      state,
		documents:  documents,
		publisher:  publisher,
		sink:       sink,
		mapper:     mapper.NewConversationMapper(),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *queryService) Ask(ctx context.Context, ownerID, clientID string, request *dto.QueryRequest) (*dto.QueryResponse, error) {
	question := strings.TrimSpace(request.Question)
	if question == "" {
		return nil, ErrInvalidQuestion
	}

	conv, isNew, err := s.openConversation(ctx, ownerID, request.ConversationId)
	if err != nil {
		return nil, err
	}

	reporter := progress.NewReporter(s.sink, clientID, s.logger)

	// naming runs next to the pipeline, it only needs the question
	var names <-chan string
	if conv.Name() == "" {
		names = s.nameAsync(ctx, question)
	}

	result := s.runner.Run(ctx, pipeline.Request{
		Question: question,
		History:  s.state.RecentHistory(conv, 0),
	}, reporter)

	if result.Citation != nil {
		if url := s.documents.PdfURL(ctx, result.Citation.Title, result.Citation.Year); url != "" {
			result.Citation.SourceURL = url
		}
	}

	named := false
	if names != nil {
		named = conv.SetNameOnce(<-names)
	}

	if result.Intent == rag.IntentLegalQuery {
		reporter.Emit(progress.StepFinalizing, "Saving the answer")
	}

	turn := result.Turn(question)
	turn.CreatedAt = s.now()

	// the turn is stored even if the caller has gone away
	persistCtx := context.WithoutCancel(ctx)
	sequence, persistErr := s.persist(persistCtx, conv, isNew, named, turn)

	resp := buildQueryResponse(conv, result)
	if persistErr != nil && isNew {
		// the id was never stored; a follow-up with it would 404
		resp.ConversationId = ""
	}
	reporter.Complete("Answer ready")

	if persistErr != nil {
		s.logger.Error(queryModule, "Failed to record turn", map[string]interface{}{
			"conversation_id": conv.ID,
			"intent":          result.Intent,
			"error":           persistErr.Error(),
			"pg_code":         pgErrorCode(persistErr),
		})
		return resp, fmt.Errorf("%w: %w", ErrPersistence, persistErr)
	}

	s.publishTurnRecorded(persistCtx, conv.ID, sequence, result)

	if result.Err != nil {
		return resp, result.Err
	}
	return resp, nil
}

func (s *queryService) GetConversation(ctx context.Context, ownerID, conversationID string) (*dto.ConversationResponse, error) {
	conv, _, err := s.openConversation(ctx, ownerID, conversationID)
	if err != nil {
		return nil, err
	}

	turns := conv.Turns()
	out := &dto.ConversationResponse{
		Id:        conv.ID,
		Name:      conv.Name(),
		CreatedAt: conv.CreatedAt,
		Turns:     make([]dto.TurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		tr := dto.TurnResponse{
			Question:   t.Question,
			Intent:     string(t.Intent),
			AnswerText: t.AnswerText,
			MatchScore: t.MatchScore,
			CreatedAt:  t.CreatedAt,
		}
		if t.Citation != nil {
			tr.Citation = &dto.CitationResponse{
				Title:      t.Citation.Title,
				Year:       t.Citation.Year,
				PageNumber: t.Citation.PageNumber,
				PdfUrl:     t.Citation.SourceURL,
			}
		}
		out.Turns = append(out.Turns, tr)
	}
	return out, nil
}

// openConversation resolves rawID for ownerID. An empty rawID starts a new,
// not yet stored conversation.
func (s *queryService) openConversation(ctx context.Context, ownerID, rawID string) (*conversation.Conversation, bool, error) {
	if rawID == "" {
		return conversation.New(uuid.NewString(), ownerID, "", s.now(), nil), true, nil
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, false, ErrConversationNotFound
	}

	conv, err := s.state.Get(ctx, id.String(), s.loadConversation, s.countTurns)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			return nil, false, ErrConversationNotFound
		}
		return nil, false, fmt.Errorf("load conversation %s: %w", id, err)
	}

	// someone else's conversation looks exactly like a missing one
	if conv.OwnerID != ownerID {
		return nil, false, ErrConversationNotFound
	}
	return conv, false, nil
}

func (s *queryService) loadConversation(ctx context.Context, id string) (*conversation.Conversation, error) {
	convID, err := uuid.Parse(id)
	if err != nil {
		return nil, conversation.ErrNotFound
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	stored, err := uow.ConversationRepository().FindById(ctx, convID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, conversation.ErrNotFound
	}

	storedTurns, err := uow.ConversationTurnRepository().FindByConversationId(ctx, convID)
	if err != nil {
		return nil, err
	}
	turns := make([]rag.Turn, 0, len(storedTurns))
	for _, t := range storedTurns {
		turns = append(turns, s.mapper.TurnToDomain(t))
	}

	return conversation.New(stored.Id.String(), stored.OwnerId, stored.Name, stored.CreatedAt, turns), nil
}

func (s *queryService) countTurns(ctx context.Context, id string) (int, error) {
	convID, err := uuid.Parse(id)
	if err != nil {
		return 0, conversation.ErrNotFound
	}
	return s.uowFactory.NewUnitOfWork(ctx).ConversationTurnRepository().CountByConversationId(ctx, convID)
}

func (s *queryService) nameAsync(ctx context.Context, question string) <-chan string {
	names := make(chan string, 1)
	go func() {
		names <- s.namer.NameConversation(context.WithoutCancel(ctx), question)
	}()
	return names
}

// persist stores turn and, for a new conversation, the conversation itself in
// one transaction. The in-process state only changes after the store did.
func (s *queryService) persist(ctx context.Context, conv *conversation.Conversation, isNew, named bool, turn rag.Turn) (int, error) {
	convID, err := uuid.Parse(conv.ID)
	if err != nil {
		return 0, err
	}
	stored := s.mapper.TurnFromDomain(convID, turn)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if isNew {
		if err := uow.Begin(ctx); err != nil {
			return 0, err
		}
		defer uow.Rollback()

		if err := uow.ConversationRepository().Create(ctx, &entity.Conversation{
			Id:        convID,
			OwnerId:   conv.OwnerID,
			Name:      conv.Name(),
			CreatedAt: conv.CreatedAt,
		}); err != nil {
			return 0, fmt.Errorf("create conversation: %w", err)
		}
		if err := uow.ConversationTurnRepository().Append(ctx, stored); err != nil {
			return 0, fmt.Errorf("append turn: %w", err)
		}
		if err := uow.Commit(); err != nil {
			return 0, err
		}

		conv = s.state.Put(conv)
		s.state.AppendTurn(conv, turn)
		return stored.Sequence, nil
	}

	if err := uow.ConversationTurnRepository().Append(ctx, stored); err != nil {
		return 0, fmt.Errorf("append turn: %w", err)
	}
	if stored.Sequence == conv.Len() {
		s.state.AppendTurn(conv, turn)
	} else {
		// another writer got in between, reload on the next turn
		s.state.Forget(conv.ID)
	}

	if named {
		if _, err := uow.ConversationRepository().SetNameIfEmpty(ctx, convID, conv.Name()); err != nil {
			// the turn is safe, only the name is lost
			s.logger.Warn(queryModule, "Failed to store conversation name", map[string]interface{}{
				"conversation_id": conv.ID,
				"error":           err.Error(),
			})
		}
	}
	return stored.Sequence, nil
}

func (s *queryService) publishTurnRecorded(ctx context.Context, conversationID string, sequence int, result *pipeline.Result) {
	event := events.TurnRecorded{
		ConversationID: conversationID,
		Sequence:       sequence,
		Intent:         string(result.Intent),
		Outcome:        string(result.Outcome),
		MatchScore:     result.MatchScore,
		OccurredAt:     s.now(),
	}
	if c := result.Citation; c != nil {
		event.Citation = fmt.Sprintf("%s (%s) p.%s", c.Title, c.Year, c.PageNumber)
	}

	if err := s.publisher.PublishTurnRecorded(ctx, event); err != nil {
		s.logger.Warn(queryModule, "Failed to publish turn event", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
	}
}

func buildQueryResponse(conv *conversation.Conversation, result *pipeline.Result) *dto.QueryResponse {
	resp := &dto.QueryResponse{
		ConversationId:   conv.ID,
		ConversationName: conv.Name(),
		Intent:           string(result.Intent),
		Summary:          result.Summary,
		OriginalText:     result.OriginalText,
		MatchScore:       result.MatchScore,
	}
	if c := result.Citation; c != nil {
		resp.Title = stringPtr(c.Title)
		resp.Year = stringPtr(c.Year)
		resp.PageNumber = stringPtr(c.PageNumber)
		if c.SourceURL != "" {
			resp.PdfUrl = stringPtr(c.SourceURL)
		}
	}
	return resp
}

func stringPtr(s string) *string {
	return &s
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
