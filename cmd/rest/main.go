package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legal-rag-be/internal/bootstrap"
	"legal-rag-be/internal/config"
	"legal-rag-be/internal/seed"
	"legal-rag-be/internal/server"
	"legal-rag-be/internal/tracer"
	"legal-rag-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelEndpoint)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database (optional)
	var gormDB *gorm.DB
	if !cfg.InMemory() {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.DatabaseOptions())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.Start(ctx); err != nil {
		log.Panicf("Unable to start background services: %v", err)
	}

	if cfg.App.SeedDemoCorpus {
		if _, err := seed.Seed(ctx, container.UowFactory, container.Embedding, seed.DemoCorpus(), container.Logger); err != nil {
			log.Printf("Warn: Failed to seed demo corpus: %v", err)
		}
	}

	// 6. Run Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
