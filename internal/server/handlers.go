package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kompow/kompow-go/internal/kb"
	"github.com/kompow/kompow-go/internal/logging"
	"github.com/kompow/kompow-go/internal/service"
	"github.com/kompow/kompow-go/internal/store"
)

// defaultFlashcardLimit bounds GET /api/flashcards when no limit is given.
const defaultFlashcardLimit = 10

// defaultRunsLimit bounds GET /api/runs when no limit is given.
const defaultRunsLimit = 20

// handlePipelineRun handles POST /api/pipeline/run. It executes the full
// learning pipeline synchronously and returns its result; a skipped run is
// still a 200 with a populated skip_reason.
func (s *Server) handlePipelineRun(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := s.svc.RunPipeline(r.Context(), req.UserID)
	elapsed := time.Since(start)

	outcome := "completed"
	switch {
	case err != nil:
		outcome = "error"
	case !res.Completed():
		outcome = "skipped"
	}
	s.metrics.pipelineRunsTotal.WithLabelValues(outcome).Inc()
	s.metrics.pipelineDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if err != nil {
		log.Error("pipeline run failed", slog.String("user", req.UserID), slog.Any("error", err))
		http.Error(w, "pipeline run failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleFlashcards handles GET /api/flashcards.
func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	topic := r.URL.Query().Get("topic")
	limit := queryInt(r, "limit", defaultFlashcardLimit)

	sets, err := s.svc.FlashcardSets(r.Context(), userID, topic, limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("flashcard listing failed",
			slog.String("user", userID), slog.Any("error", err))
		http.Error(w, "could not list flashcards", http.StatusInternalServerError)
		return
	}
	if sets == nil {
		sets = []service.FlashcardSet{}
	}

	writeJSON(w, http.StatusOK, flashcardsResponse{UserID: userID, Sets: sets})
}

// handleTopics handles GET /api/topics.
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	topics, err := s.svc.FlashcardTopics(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("topic listing failed",
			slog.String("user", userID), slog.Any("error", err))
		http.Error(w, "could not list topics", http.StatusInternalServerError)
		return
	}
	if topics == nil {
		topics = []string{}
	}

	writeJSON(w, http.StatusOK, topicsResponse{UserID: userID, Topics: topics})
}

// handleAddDocument handles POST /api/documents.
func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	if err := s.svc.AddDocument(r.Context(), req.UserID, req.Content, req.Source); err != nil {
		if errors.Is(err, kb.ErrSearchDisabled) {
			http.Error(w, "knowledge base writes are disabled: no embedder configured", http.StatusServiceUnavailable)
			return
		}
		logging.FromContext(r.Context()).Error("document store failed",
			slog.String("user", req.UserID), slog.Any("error", err))
		http.Error(w, "could not store document", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "stored"})
}

// handleIngest handles POST /api/ingest. Ingestion progress is logged, not
// streamed; the response summarizes the batch.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if len(req.URLs) == 0 {
		http.Error(w, "urls is required", http.StatusBadRequest)
		return
	}

	res, err := s.svc.IngestURLs(r.Context(), req.UserID, req.URLs, func(msg string) {
		log.Debug("ingest progress", slog.String("msg", msg))
	})
	if err != nil {
		if errors.Is(err, kb.ErrSearchDisabled) {
			http.Error(w, "knowledge base writes are disabled: no embedder configured", http.StatusServiceUnavailable)
			return
		}
		log.Error("ingestion failed", slog.String("user", req.UserID), slog.Any("error", err))
		http.Error(w, "ingestion failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleRuns handles GET /api/runs.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	limit := queryInt(r, "limit", defaultRunsLimit)

	runs, err := s.svc.RecentRuns(r.Context(), userID, limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("run listing failed",
			slog.String("user", userID), slog.Any("error", err))
		http.Error(w, "could not list runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}

	writeJSON(w, http.StatusOK, runsResponse{UserID: userID, Runs: runs})
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("response encode error", slog.Any("error", err))
	}
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or invalid.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
