package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/acmecorp/docquery/internal/config"
	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
	"github.com/acmecorp/docquery/internal/core/usecase"
	"github.com/acmecorp/docquery/internal/infrastructure/chunking"
	"github.com/acmecorp/docquery/internal/infrastructure/extractor"
	"github.com/acmecorp/docquery/internal/infrastructure/llm/ollama"
	"github.com/acmecorp/docquery/internal/infrastructure/queue/nats"
	"github.com/acmecorp/docquery/internal/infrastructure/repository/postgres"
	"github.com/acmecorp/docquery/internal/infrastructure/resilience"
	"github.com/acmecorp/docquery/internal/infrastructure/storage/localfs"
	"github.com/acmecorp/docquery/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Docs      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.QueryService
	Sessions  *usecase.SessionManager

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := slog.Default()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docs := postgres.NewDocumentRepository(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	transcript := postgres.NewTranscriptRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.WithResilience(executor))
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	semantic := qdrant.NewSemanticIndex(vectorDB, embedder)
	var lexical ports.LexicalIndex
	if cfg.LexicalEnabled {
		lexical = qdrant.NewLexicalIndex(vectorDB, cfg.LexicalCandidates)
	}

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extract := extractor.New(storage)

	rephraser := usecase.NewRephraser(generator)
	classifier := usecase.NewClassifier(generator, logger)
	retriever := usecase.NewHybridRetriever(semantic, lexical, cfg.FusionRRFK, logger)

	ingestUC := usecase.NewIngestDocumentUseCase(docs, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(docs, extract, chunker, embedder, vectorDB)
	queryUC := usecase.NewQueryUseCase(classifier, retriever, generator, cfg.RetrievalTopK)

	sessions := usecase.NewSessionManager(
		rephraser,
		classifier,
		retriever,
		generator,
		generator,
		transcript,
		usecase.SessionConfig{
			Window:     cfg.MemoryWindow,
			TopK:       cfg.RetrievalTopK,
			MemoryMode: domain.ParseMemoryMode(cfg.MemoryMode),
		},
		logger,
	)

	return &App{
		Config: cfg,
		Queue:  queue,
		Docs:   docs,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,
		Sessions:  sessions,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
