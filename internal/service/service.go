// Package service assembles the knowledge base, agents, and pipeline behind
// one facade used by both the CLI commands and the HTTP server. It owns the
// per-request wiring (building agents for a user's handle) so transport code
// never touches agent construction.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"

	"github.com/kompow/kompow-go/internal/agent"
	"github.com/kompow/kompow-go/internal/ingestion"
	"github.com/kompow/kompow-go/internal/kb"
	"github.com/kompow/kompow-go/internal/pipeline"
	"github.com/kompow/kompow-go/internal/store"
	"github.com/kompow/kompow-go/internal/webcontent"
)

// FlashcardSet is the decoded view of one stored flashcard-set document.
type FlashcardSet struct {
	// ID is the stored document identifier.
	ID string `json:"id"`
	// Topic is the set's topic label.
	Topic string `json:"topic"`
	// CreatedAt is the RFC3339 timestamp the set was stored.
	CreatedAt string `json:"created_at"`
	// Source records what produced the set.
	Source string `json:"source"`
	// Cards are the question/answer pairs.
	Cards []kb.Flashcard `json:"cards"`
}

// Config carries the dependencies for New.
type Config struct {
	// KBs hands out per-user knowledge-base handles. Required.
	KBs *kb.Manager

	// Model is the chat model behind the agents. Optional: without it,
	// RunPipeline fails but document and flashcard reads still work.
	Model model.ToolCallingChatModel

	// SearchTool is attached to the research agent when present.
	SearchTool tool.BaseTool

	// Runs records pipeline stage outcomes. Optional.
	Runs store.RunStore

	// Ingestor extracts and chunks web pages. Defaults to a pipeline over a
	// plain extractor.
	Ingestor *ingestion.Pipeline

	// MaxProfileDocs bounds the profile agent's document fetch.
	MaxProfileDocs int

	// MaxFlashcards bounds cards kept per generation.
	MaxFlashcards int

	// MinResearchChars is the research-length floor for pipeline runs.
	MinResearchChars int

	// Logger receives structured logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// Service is the application facade over the learning system.
type Service struct {
	kbs         *kb.Manager
	model       model.ToolCallingChatModel
	searchTool  tool.BaseTool
	runs        store.RunStore
	ingestor    *ingestion.Pipeline
	maxDocs     int
	maxCards    int
	minResearch int
	log         *slog.Logger
}

// New validates cfg and constructs a Service.
func New(cfg *Config) (*Service, error) {
	if cfg == nil || cfg.KBs == nil {
		return nil, fmt.Errorf("service: knowledge base manager is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	ingestor := cfg.Ingestor
	if ingestor == nil {
		var err error
		ingestor, err = ingestion.NewPipeline(webcontent.NewExtractor(log), nil, log)
		if err != nil {
			return nil, fmt.Errorf("service: failed to build ingestion pipeline: %w", err)
		}
	}
	return &Service{
		kbs:         cfg.KBs,
		model:       cfg.Model,
		searchTool:  cfg.SearchTool,
		runs:        cfg.Runs,
		ingestor:    ingestor,
		maxDocs:     cfg.MaxProfileDocs,
		maxCards:    cfg.MaxFlashcards,
		minResearch: cfg.MinResearchChars,
		log:         log,
	}, nil
}

// RunPipeline executes the full learning pipeline for one user and returns
// its result. Requires a configured chat model.
func (s *Service) RunPipeline(ctx context.Context, userID string) (*pipeline.Result, error) {
	if s.model == nil {
		return nil, fmt.Errorf("service: no chat model configured, cannot run pipeline")
	}

	handle, err := s.kbs.UserKB(ctx, userID)
	if err != nil {
		return nil, err
	}

	orch, err := s.buildOrchestrator(ctx, handle)
	if err != nil {
		return nil, err
	}
	return orch.Run(ctx)
}

// buildOrchestrator wires the three agents for one user handle.
func (s *Service) buildOrchestrator(ctx context.Context, handle *kb.KnowledgeBase) (*pipeline.Orchestrator, error) {
	profileInv, err := agent.NewChatInvoker(s.model, agent.ProfileSystemPrompt)
	if err != nil {
		return nil, err
	}
	profile, err := agent.NewProfileAgent(&agent.ProfileConfig{
		UserID:  handle.UserID(),
		KB:      handle,
		Invoker: profileInv,
		MaxDocs: s.maxDocs,
		Logger:  s.log,
	})
	if err != nil {
		return nil, err
	}

	var tools []tool.BaseTool
	if s.searchTool != nil {
		tools = append(tools, s.searchTool)
	}
	researchInv, err := agent.NewReactInvoker(ctx, s.model, tools, agent.ResearchSystemPrompt)
	if err != nil {
		return nil, err
	}
	research, err := agent.NewResearchAgent(&agent.ResearchConfig{
		Invoker: researchInv,
		Logger:  s.log,
	})
	if err != nil {
		return nil, err
	}

	cardInv, err := agent.NewChatInvoker(s.model, agent.FlashcardSystemPrompt)
	if err != nil {
		return nil, err
	}
	cards, err := agent.NewFlashcardAgent(&agent.FlashcardConfig{
		Invoker:  cardInv,
		MaxCards: s.maxCards,
		Logger:   s.log,
	})
	if err != nil {
		return nil, err
	}

	return pipeline.NewOrchestrator(&pipeline.Config{
		Profile:          profile,
		Research:         research,
		Cards:            cards,
		KB:               handle,
		Runs:             s.runs,
		MinResearchChars: s.minResearch,
		Logger:           s.log,
	})
}

// AddDocument stores one document in the user's knowledge base and returns
// nothing on success. source may be empty.
func (s *Service) AddDocument(ctx context.Context, userID, content, source string) error {
	handle, err := s.kbs.UserKB(ctx, userID)
	if err != nil {
		return err
	}
	var meta map[string]string
	if source != "" {
		meta = map[string]string{"source": source}
	}
	return handle.AddDocument(ctx, content, meta, "")
}

// IngestURLs extracts the given URLs and stores their chunks in the user's
// knowledge base. progress may be nil.
func (s *Service) IngestURLs(ctx context.Context, userID string, urls []string, progress func(string)) (*ingestion.Result, error) {
	handle, err := s.kbs.UserKB(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ingestor.Ingest(ctx, handle, urls, progress)
}

// FlashcardSets returns the user's decoded flashcard sets, newest first.
// A non-empty topic selects exact matches. Sets whose stored content no
// longer decodes are skipped.
func (s *Service) FlashcardSets(ctx context.Context, userID, topic string, limit int) ([]FlashcardSet, error) {
	handle, err := s.kbs.UserKB(ctx, userID)
	if err != nil {
		return nil, err
	}
	docs, err := handle.FlashcardSets(ctx, topic, limit)
	if err != nil {
		return nil, err
	}

	sets := make([]FlashcardSet, 0, len(docs))
	for _, d := range docs {
		cards := kb.DecodeFlashcards(d.Content)
		if cards == nil {
			s.log.Warn("skipping undecodable flashcard set",
				"user", userID, "doc_id", d.ID)
			continue
		}
		sets = append(sets, FlashcardSet{
			ID:        d.ID,
			Topic:     d.Metadata[kb.MetaTopic],
			CreatedAt: d.Metadata[kb.MetaCreationDate],
			Source:    d.Metadata["source"],
			Cards:     cards,
		})
	}
	return sets, nil
}

// FlashcardTopics returns the distinct flashcard topics for the user.
func (s *Service) FlashcardTopics(ctx context.Context, userID string) ([]string, error) {
	handle, err := s.kbs.UserKB(ctx, userID)
	if err != nil {
		return nil, err
	}
	return handle.FlashcardTopics(ctx)
}

// RecentRuns returns the user's most recent pipeline stage records. Returns
// nil when no run store is configured.
func (s *Service) RecentRuns(ctx context.Context, userID string, limit int) ([]store.Run, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.Recent(ctx, userID, limit)
}
