package bootstrap

import (
	"context"
	"fmt"
	"time"

	"legal-rag-be/internal/config"
	"legal-rag-be/internal/controller"
	"legal-rag-be/internal/handler"
	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/internal/repository/memory"
	"legal-rag-be/internal/repository/unitofwork"
	"legal-rag-be/internal/service"
	"legal-rag-be/internal/websocket"
	"legal-rag-be/pkg/embedding"
	"legal-rag-be/pkg/llm"
	"legal-rag-be/pkg/llm/factory"
	pktNats "legal-rag-be/pkg/nats"
	"legal-rag-be/pkg/rag/conversation"
	"legal-rag-be/pkg/rag/expand"
	"legal-rag-be/pkg/rag/intent"
	"legal-rag-be/pkg/rag/pipeline"
	"legal-rag-be/pkg/rag/ranking"
	"legal-rag-be/pkg/rag/response"
	"legal-rag-be/pkg/rag/search"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	module         = "BOOTSTRAP"
	turnEventTopic = "turn_recorded"
)

type Container struct {
	// Controllers
	QueryController        controller.IQueryController
	ConversationController controller.IConversationController
	ProgressHandler        *handler.ProgressHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	// Used by main to seed the demo corpus
	UowFactory unitofwork.RepositoryFactory
	Embedding  embedding.EmbeddingProvider
	Logger     logger.ILogger

	closers []func()
}

// NewContainer wires the application. A nil db selects the in-memory
// repositories.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		uowFactory = memory.NewRepositoryFactory(memory.NewStore())
		sysLogger.Warn(module, "DB_CONNECTION_STRING not set, using in-memory repositories", nil)
	}

	c := &Container{UowFactory: uowFactory, Logger: sysLogger}

	// 2. AI providers
	embeddingProvider := NewEmbeddingProvider(cfg)
	sysLogger.Info(module, "Embedding provider ready", map[string]interface{}{"provider": cfg.Ai.EmbeddingProvider})

	llmProvider, err := NewLLMProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	sysLogger.Info(module, "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 3. Pipeline
	ragPipeline, generator := NewPipeline(cfg, llmProvider, embeddingProvider, uowFactory, sysLogger)
	c.Embedding = embeddingProvider

	// 4. Infrastructure
	rdb := newRedisClient(cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	progressLogger := logger.NewIsolatedLogger(cfg.App.ProgressLogPath)
	wsHub := websocket.NewHub(rdb, progressLogger)
	c.WebSocketHub = wsHub

	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn(module, "Failed to connect to NATS, turn events stay local", map[string]interface{}{"error": err.Error()})
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 5. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	c.ConsumerService = service.NewConsumerService(pubSub, turnEventTopic, forwarder, cfg.App.TurnEventSubject, sysLogger)

	// 6. Services
	queryService := service.NewQueryService(
		uowFactory,
		ragPipeline,
		generator,
		conversation.NewState(cfg.Rag.ConversationCacheTTL, cfg.Rag.HistoryLimit),
		service.NewDocumentLookup(uowFactory, 30*time.Minute, sysLogger),
		service.NewTurnEventPublisher(pubSub, turnEventTopic),
		wsHub,
		sysLogger,
	)

	// 7. Controllers
	c.QueryController = controller.NewQueryController(queryService)
	c.ConversationController = controller.NewConversationController(queryService)
	c.ProgressHandler = handler.NewProgressHandler(wsHub, progressLogger)

	c.closers = append(c.closers, func() {
		_ = progressLogger.Sync()
		_ = sysLogger.Sync()
	})
	return c, nil
}

// Start launches the background workers. They stop when ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	return c.ConsumerService.Consume(ctx)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// NewPipeline builds the answer pipeline over the chunks in uowFactory. The
// generator is returned as well since it also names conversations.
func NewPipeline(
	cfg *config.Config,
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) (*pipeline.Pipeline, *response.Generator) {
	generator := response.NewGenerator(llmProvider, cfg.Rag.GenerationTimeout, log)
	retriever := search.NewRetriever(
		embeddingProvider,
		service.NewVectorStore(uowFactory),
		search.Config{
			TopK:             cfg.Rag.TopKPerQuery,
			Concurrency:      cfg.Rag.RetrievalConcurrency,
			EmbeddingTimeout: cfg.Rag.EmbeddingTimeout,
			SearchTimeout:    cfg.Rag.SearchTimeout,
		},
		log,
	)
	p := pipeline.New(
		intent.NewClassifier(llmProvider, cfg.Rag.ClassifierTimeout, log),
		expand.NewExpander(llmProvider, cfg.Rag.MaxSearchQueries, cfg.Rag.ClassifierTimeout, log),
		retriever,
		ranking.NewAggregator(ranking.Config{
			ScoreThreshold:    cfg.Rag.ScoreThreshold,
			FinalContextSize:  cfg.Rag.FinalContextSize,
			DedupPrefixLength: cfg.Rag.DedupPrefixLength,
		}),
		generator,
		pipeline.Config{TopKPerQuery: cfg.Rag.TopKPerQuery},
		log,
	)
	return p, generator
}

func NewEmbeddingProvider(cfg *config.Config) embedding.EmbeddingProvider {
	if cfg.Ai.EmbeddingProvider == "gemini" {
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}
	return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
}

func NewLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	baseURL := cfg.Ai.LLMBaseURL
	if baseURL == "" && cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}

	apiKey := cfg.Keys.HuggingFace
	if cfg.Ai.LLMProvider == "gemini" {
		apiKey = cfg.Keys.GoogleGemini
	}
	return factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, apiKey)
}

// newRedisClient returns nil when no URL is configured or the server does
// not answer; progress then stays instance-local.
func newRedisClient(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn(module, "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn(module, "Failed to connect to Redis, progress fan-out disabled", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
