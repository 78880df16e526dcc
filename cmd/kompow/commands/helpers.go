package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/cloudwego/eino/components/model"

	"github.com/kompow/kompow-go/internal/credentials"
	"github.com/kompow/kompow-go/internal/embedder"
	"github.com/kompow/kompow-go/internal/kb"
	"github.com/kompow/kompow-go/internal/provider"
	"github.com/kompow/kompow-go/internal/rag"
	"github.com/kompow/kompow-go/internal/service"
	"github.com/kompow/kompow-go/internal/store"
	"github.com/kompow/kompow-go/internal/websearch"
)

// app bundles the wired application components a command needs, plus a
// cleanup function that closes them in order.
type app struct {
	svc   *service.Service
	model model.ToolCallingChatModel
	emb   rag.Embedder
	qdr   *rag.QdrantStore
	close func()
}

// buildApp wires the service facade from environment configuration.
//
// The embedder is optional: when it cannot be built the knowledge base runs
// search-disabled and a warning is logged. The chat model is required only
// when needModel is set; commands that merely read or ingest pass false.
func buildApp(ctx context.Context, log *slog.Logger, needModel bool) (*app, error) {
	creds := credentials.Env{}

	embedder.WarnOnSuspectConfig(log, creds)
	emb, err := embedder.NewFromEnv(creds)
	if err != nil {
		log.Warn("embedder unavailable, knowledge bases run search-disabled",
			slog.Any("error", err))
		emb = nil
	}

	vectorSize := uint64(embedder.DefaultDimensions(embedder.ResolveBackend()))
	qdr, err := rag.NewQdrantStore(&rag.QdrantConfig{
		Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:       getEnvInt("QDRANT_PORT", 6334),
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	kbs, err := kb.NewManager(&kb.ManagerConfig{
		Store:    qdr,
		Embedder: emb,
		Logger:   log,
	})
	if err != nil {
		qdr.Close()
		return nil, err
	}

	var chatModel model.ToolCallingChatModel
	chatModel, err = provider.NewFromEnv(ctx, creds)
	if err != nil {
		if needModel {
			qdr.Close()
			return nil, fmt.Errorf("failed to initialise model provider: %w", err)
		}
		log.Warn("chat model unavailable, pipeline runs are disabled",
			slog.Any("error", err))
		chatModel = nil
	}

	searchTool := websearch.NewSearchTool(websearch.NewClient(log))
	searchTool.SetDefaultMax(getEnvInt("SEARCH_MAX_RESULTS", 0))

	runs, closeRuns := openRunStore(log)

	svc, err := service.New(&service.Config{
		KBs:              kbs,
		Model:            chatModel,
		SearchTool:       searchTool,
		Runs:             runs,
		MaxProfileDocs:   getEnvInt("PIPELINE_MAX_DOCS", 0),
		MaxFlashcards:    getEnvInt("PIPELINE_MAX_FLASHCARDS", 0),
		MinResearchChars: getEnvInt("PIPELINE_MIN_RESEARCH_CHARS", 0),
		Logger:           log,
	})
	if err != nil {
		closeRuns()
		qdr.Close()
		return nil, err
	}

	return &app{
		svc:   svc,
		model: chatModel,
		emb:   emb,
		qdr:   qdr,
		close: func() {
			closeRuns()
			_ = qdr.Close()
		},
	}, nil
}

// openRunStore opens the pipeline run-history store. KOMPOW_RUNS_DB overrides
// the default path (~/.kompow/runs.db); "disabled" turns history off. Failures
// degrade to no history rather than aborting the command.
func openRunStore(log *slog.Logger) (store.RunStore, func()) {
	dbPath := os.Getenv("KOMPOW_RUNS_DB")
	if dbPath == "disabled" {
		log.Info("run history disabled via KOMPOW_RUNS_DB=disabled")
		return nil, func() {}
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			log.Warn("run history: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, func() {}
		}
	}

	rs, err := store.Open(dbPath)
	if err != nil {
		log.Warn("run history: failed to open store, disabling", slog.Any("error", err))
		return nil, func() {}
	}
	log.Info("run history store opened", slog.String("path", dbPath))
	return rs, func() { _ = rs.Close() }
}

// getEnvOrDefault returns the env var value, or def when unset.
func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the env var parsed as int, or def when unset or invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
