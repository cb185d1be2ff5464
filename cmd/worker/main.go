package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/paperdex/paperdex/internal/claims"
	"github.com/paperdex/paperdex/internal/config"
	"github.com/paperdex/paperdex/internal/database"
	"github.com/paperdex/paperdex/internal/embedding"
	"github.com/paperdex/paperdex/internal/extract"
	"github.com/paperdex/paperdex/internal/llm"
	"github.com/paperdex/paperdex/internal/ocr"
	"github.com/paperdex/paperdex/internal/pdfio"
	"github.com/paperdex/paperdex/internal/pipeline"
	"github.com/paperdex/paperdex/internal/queue"
	"github.com/paperdex/paperdex/internal/repository"
	"github.com/paperdex/paperdex/internal/service"
	"github.com/paperdex/paperdex/internal/vectorstore"
)

func main() {
	// Load .env file if exists
	godotenv.Load()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rdb, err := queue.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	q := queue.New(rdb)

	llmClient, err := llm.New(llm.Config{
		Provider:      cfg.LLMProvider,
		Model:         cfg.LLMModel,
		APIKey:        cfg.LLMAPIKey(),
		OllamaBaseURL: cfg.OllamaBaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	render := pdfio.NewRenderClient(cfg.RenderServiceURL)
	embedder := embedding.NewService(
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingModel,
		cfg.EmbeddingDimensions,
	)

	pipe := pipeline.New(
		pdfio.NewOpener(render),
		ocr.NewHTTPClient(cfg.OCRServiceURL),
		embedder,
		vectorstore.NewStore(db),
		claims.NewExtractor(llmClient),
		repository.NewDocumentRepository(db),
		pipeline.Config{ChunkSize: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
	)

	worker := queue.NewWorker(q, cfg.WorkerRetries)
	worker.Register(service.JobProcessPDF, func(ctx context.Context, job *queue.Job, report queue.ProgressFunc) (map[string]interface{}, error) {
		if len(job.Args) != 3 {
			return nil, fmt.Errorf("process_pdf expects 3 args, got %d", len(job.Args))
		}
		docID, path := job.Args[0], job.Args[1]
		mode, err := extract.ParseOCRMode(job.Args[2])
		if err != nil {
			return nil, err
		}

		result, err := pipe.Run(ctx, docID, path, mode, pipeline.Reporter(report))
		if err != nil {
			return nil, err
		}
		return result.Map(), nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Paperdex worker starting")
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Worker stopped: %v", err)
	}
}
