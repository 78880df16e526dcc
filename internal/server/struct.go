package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kompow/kompow-go/internal/ingestion"
	"github.com/kompow/kompow-go/internal/pipeline"
	"github.com/kompow/kompow-go/internal/service"
	"github.com/kompow/kompow-go/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	// Must be long enough for a full pipeline run.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, slog.Default is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MetricsRegistry receives metric registrations. Defaults to the global
	// Prometheus registerer; tests inject a fresh registry.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. Defaults to the global gatherer.
	MetricsGatherer prometheus.Gatherer
}

// learner is the application facade the handlers call.
// *service.Service satisfies it; tests inject a fake.
type learner interface {
	RunPipeline(ctx context.Context, userID string) (*pipeline.Result, error)
	FlashcardSets(ctx context.Context, userID, topic string, limit int) ([]service.FlashcardSet, error)
	FlashcardTopics(ctx context.Context, userID string) ([]string, error)
	AddDocument(ctx context.Context, userID, content, source string) error
	IngestURLs(ctx context.Context, userID string, urls []string, progress func(string)) (*ingestion.Result, error)
	RecentRuns(ctx context.Context, userID string, limit int) ([]store.Run, error)
}

// Server is the HTTP server that exposes the learning service as a REST API.
type Server struct {
	// svc is the application facade handling all requests.
	svc learner
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// runRequest is the JSON body for POST /api/pipeline/run.
type runRequest struct {
	// UserID identifies whose knowledge base the pipeline reads.
	UserID string `json:"user_id"`
}

// documentRequest is the JSON body for POST /api/documents.
type documentRequest struct {
	// UserID identifies the owning user.
	UserID string `json:"user_id"`
	// Content is the document text to store.
	Content string `json:"content"`
	// Source optionally records where the content came from.
	Source string `json:"source,omitempty"`
}

// ingestRequest is the JSON body for POST /api/ingest.
type ingestRequest struct {
	// UserID identifies the owning user.
	UserID string `json:"user_id"`
	// URLs are the pages to fetch and store.
	URLs []string `json:"urls"`
}

// flashcardsResponse is the JSON response for GET /api/flashcards.
type flashcardsResponse struct {
	// UserID echoes the requested user.
	UserID string `json:"user_id"`
	// Sets are the decoded flashcard sets, newest first.
	Sets []service.FlashcardSet `json:"sets"`
}

// topicsResponse is the JSON response for GET /api/topics.
type topicsResponse struct {
	// UserID echoes the requested user.
	UserID string `json:"user_id"`
	// Topics are the distinct flashcard topics in sorted order.
	Topics []string `json:"topics"`
}

// runsResponse is the JSON response for GET /api/runs.
type runsResponse struct {
	// UserID echoes the requested user.
	UserID string `json:"user_id"`
	// Runs are the recent pipeline stage records, newest first.
	Runs []store.Run `json:"runs"`
}
