package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"regulation-chat-be/internal/config"
	"regulation-chat-be/internal/pkg/logger"
	"regulation-chat-be/internal/repository/unitofwork"
	"regulation-chat-be/internal/service"
	"regulation-chat-be/pkg/database"
	"regulation-chat-be/pkg/embedding"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	dirFlag := flag.String("dir", "", "corpus directory (defaults to CORPUS_DIR)")
	flag.Parse()

	dir := *dirFlag
	if dir == "" {
		dir = cfg.Ingest.CorpusDir
	}

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	ingestService := service.NewIngestService(
		nil, // no pubsub needed for a synchronous run
		unitofwork.NewRepositoryFactory(gormDB),
		embeddingProvider,
		cfg.Ingest.Workers,
		sysLogger,
	)

	color.Cyan("Ingesting corpus from %s (%d workers)", dir, cfg.Ingest.Workers)

	results, err := ingestService.Run(context.Background(), dir)
	if err != nil {
		color.Red("Ingestion aborted: %v", err)
		os.Exit(1)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Document < results[j].Document
	})

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Error == "" {
			color.Green("  ✔ %s (%d chunks, %d pages)", r.Document, r.Chunks, r.Pages)
			succeeded++
		} else {
			color.Red("  ✘ %s: %s", r.Document, r.Error)
			failed++
		}
	}

	fmt.Println()
	if failed > 0 {
		color.Yellow("Done: %d succeeded, %d failed", succeeded, failed)
		os.Exit(1)
	}
	color.Green("Done: %d documents indexed", succeeded)
}
