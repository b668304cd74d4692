package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "")

	cfg := Load()

	assert.Equal(t, 0.55, cfg.Rag.ScoreThreshold)
	assert.Equal(t, 3, cfg.Rag.TopKPerQuery)
	assert.Equal(t, 3, cfg.Rag.FinalContextSize)
	assert.Equal(t, 5, cfg.Rag.MaxSearchQueries)
	assert.Equal(t, 10, cfg.Rag.HistoryLimit)
	assert.Equal(t, 100, cfg.Rag.DedupPrefixLength)
	assert.Equal(t, 15*time.Second, cfg.Rag.GenerationTimeout)
	assert.True(t, cfg.InMemory())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RAG_SCORE_THRESHOLD", "0.7")
	t.Setenv("RAG_TOP_K_PER_QUERY", "5")
	t.Setenv("RAG_GENERATION_TIMEOUT", "30s")
	t.Setenv("RAG_SEARCH_TIMEOUT", "4")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("DB_CONNECTION_STRING", "postgres://localhost/legal")

	cfg := Load()

	assert.Equal(t, 0.7, cfg.Rag.ScoreThreshold)
	assert.Equal(t, 5, cfg.Rag.TopKPerQuery)
	assert.Equal(t, 30*time.Second, cfg.Rag.GenerationTimeout)
	assert.Equal(t, 4*time.Second, cfg.Rag.SearchTimeout)
	assert.True(t, cfg.App.OtelEnabled)
	assert.False(t, cfg.InMemory())
}

func TestGetEnvHelpers_BadValuesFallBack(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_FLOAT", "nope")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.Equal(t, 0.5, getEnvAsFloat("X_FLOAT", 0.5))
	assert.True(t, getEnvAsBool("X_BOOL", true))
	assert.Equal(t, time.Minute, getEnvAsDuration("X_DUR", time.Minute))
}

func TestDatabaseOptions(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("DB_LOG_QUERIES", "true")

	opts := Load().DatabaseOptions()

	assert.Equal(t, 20, opts.MaxOpenConns)
	assert.Equal(t, 10, opts.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, opts.ConnMaxLifetime)
	assert.True(t, opts.LogQueries)
}
