package main

import (
	"context"
	"log"

	"legal-rag-be/internal/bootstrap"
	"legal-rag-be/internal/config"
	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/internal/repository/unitofwork"
	"legal-rag-be/internal/seed"
	"legal-rag-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.InMemory() {
		log.Fatal("Error: DB_CONNECTION_STRING is not set, nothing to seed into")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.DatabaseOptions())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	log.Println("Seeding demo corpus...")
	n, err := seed.Seed(
		context.Background(),
		unitofwork.NewRepositoryFactory(db),
		bootstrap.NewEmbeddingProvider(cfg),
		seed.DemoCorpus(),
		sysLogger,
	)
	if err != nil {
		log.Fatalf("Error: Seeding stopped after %d documents: %v", n, err)
	}

	log.Printf("✅ Success: %d documents seeded.", n)
}
