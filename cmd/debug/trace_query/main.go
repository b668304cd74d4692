package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"legal-rag-be/internal/bootstrap"
	"legal-rag-be/internal/config"
	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/internal/repository/memory"
	"legal-rag-be/internal/seed"
	"legal-rag-be/pkg/rag/pipeline"
	"legal-rag-be/pkg/rag/progress"

	"github.com/fatih/color"
)

// trace_query runs one question through the pipeline against the demo corpus
// held in memory and prints every progress event and the ranked excerpts.
func main() {
	question := flag.String("q", "What is bail?", "question to trace")
	flag.Parse()

	cfg := config.Load()
	log := logger.NewNopLogger()
	ctx := context.Background()

	llmProvider, err := bootstrap.NewLLMProvider(cfg)
	if err != nil {
		color.Red("LLM provider: %v", err)
		os.Exit(1)
	}
	emb := bootstrap.NewEmbeddingProvider(cfg)

	uowFactory := memory.NewRepositoryFactory(memory.NewStore())
	color.Cyan("Seeding demo corpus with %s embeddings...", cfg.Ai.EmbeddingProvider)
	if _, err := seed.Seed(ctx, uowFactory, emb, seed.DemoCorpus(), log); err != nil {
		color.Red("Seed failed: %v", err)
		os.Exit(1)
	}

	p, _ := bootstrap.NewPipeline(cfg, llmProvider, emb, uowFactory, log)

	start := time.Now()
	sink := progress.SinkFunc(func(_ string, e progress.Event) {
		color.Yellow("[%6s] %-10s %s", time.Since(start).Round(time.Millisecond), e.Step, e.Message)
	})
	reporter := progress.NewReporter(sink, "trace", log)

	color.Cyan("\nQ: %s\n", *question)
	res := p.Run(ctx, pipeline.Request{Question: *question}, reporter)
	reporter.Complete("Done")

	fmt.Println()
	color.Green("Intent:   %s", res.Intent)
	color.Green("Outcome:  %s", res.Outcome)
	color.Green("Path:     %v", res.Path)
	if len(res.Queries) > 0 {
		color.Green("Queries:  %s", strings.Join(res.Queries, " | "))
	}
	for i, m := range res.Ranked {
		color.White("  #%d %.3f %s (%s) p.%s", i+1, m.Score, m.Metadata.Title, m.Metadata.Year, m.Metadata.PageNumber)
	}
	if res.Err != nil {
		color.Red("Error:    %v", res.Err)
	}
	fmt.Println()
	fmt.Println(res.Summary)
}
