package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"legal-rag-be/pkg/database"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	ProgressLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TurnEventSubject   string
	OtelEnabled        bool
	OtelEndpoint       string
	// SeedDemoCorpus loads the demo documents at startup.
	SeedDemoCorpus bool
}

type DatabaseConfig struct {
	// Empty selects the in-memory repositories.
	Connection      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
	// JWTSecret enables bearer token parsing. Anonymous callers are allowed
	// either way.
	JWTSecret string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "gemini", "huggingface"
	LLMModel          string // e.g. "llama3", "gemini-1.5-flash"
	LLMBaseURL        string
}

type RagConfig struct {
	ScoreThreshold       float64
	TopKPerQuery         int
	FinalContextSize     int
	MaxSearchQueries     int
	HistoryLimit         int
	DedupPrefixLength    int
	RetrievalConcurrency int
	GenerationTimeout    time.Duration
	ClassifierTimeout    time.Duration
	EmbeddingTimeout     time.Duration
	SearchTimeout        time.Duration
	ConversationCacheTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ProgressLogPath:    getEnv("PROGRESS_LOG_FILE_PATH", "logs/progress.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			TurnEventSubject:   getEnv("TURN_EVENT_SUBJECT", "legal.turns.recorded"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SeedDemoCorpus:     getEnvAsBool("SEED_DEMO_CORPUS", false),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogQueries:      getEnvAsBool("DB_LOG_QUERIES", false),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			JWTSecret:    getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
		},
		Rag: RagConfig{
			ScoreThreshold:       getEnvAsFloat("RAG_SCORE_THRESHOLD", 0.55),
			TopKPerQuery:         getEnvAsInt("RAG_TOP_K_PER_QUERY", 3),
			FinalContextSize:     getEnvAsInt("RAG_FINAL_CONTEXT_SIZE", 3),
			MaxSearchQueries:     getEnvAsInt("RAG_MAX_SEARCH_QUERIES", 5),
			HistoryLimit:         getEnvAsInt("RAG_HISTORY_LIMIT", 10),
			DedupPrefixLength:    getEnvAsInt("RAG_DEDUP_PREFIX_LENGTH", 100),
			RetrievalConcurrency: getEnvAsInt("RAG_RETRIEVAL_CONCURRENCY", 4),
			GenerationTimeout:    getEnvAsDuration("RAG_GENERATION_TIMEOUT", 15*time.Second),
			ClassifierTimeout:    getEnvAsDuration("RAG_CLASSIFIER_TIMEOUT", 15*time.Second),
			EmbeddingTimeout:     getEnvAsDuration("RAG_EMBEDDING_TIMEOUT", 10*time.Second),
			SearchTimeout:        getEnvAsDuration("RAG_SEARCH_TIMEOUT", 10*time.Second),
			ConversationCacheTTL: getEnvAsDuration("RAG_CONVERSATION_CACHE_TTL", time.Hour),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// InMemory reports whether the service runs without Postgres.
func (c *Config) InMemory() bool {
	return c.Database.Connection == ""
}

func (c *Config) DatabaseOptions() database.Options {
	return database.Options{
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		LogQueries:      c.Database.LogQueries,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
