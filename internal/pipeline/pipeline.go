// Package pipeline chains the three agents into the learning flow:
// profile analysis → topic research → flashcard generation → persistence.
// Any degenerate stage result stops the run early without error; stage
// outcomes are recorded in the run-history store when one is configured.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kompow/kompow-go/internal/agent"
	"github.com/kompow/kompow-go/internal/kb"
	"github.com/kompow/kompow-go/internal/store"
)

// minResearchChars is the default floor below which research output is
// considered too thin to generate flashcards from.
const minResearchChars = 100

// automatedTopicPrefix names flashcard sets produced by pipeline runs.
const automatedTopicPrefix = "Automated Flashcards from Profile Update - "

// AutomatedSource labels flashcard sets stored by the pipeline.
const AutomatedSource = "automated_pipeline_from_profile"

// ProfileAnalyzer is the profile stage contract.
type ProfileAnalyzer interface {
	AnalyzeUserProfile(ctx context.Context) string
}

// Researcher is the research stage contract.
type Researcher interface {
	ResearchTopics(ctx context.Context, topics agent.Topics) string
}

// CardGenerator is the flashcard stage contract.
type CardGenerator interface {
	Generate(ctx context.Context, content string) ([]kb.Flashcard, error)
}

// Result reports what one pipeline run produced. SkipReason is empty when
// the run completed through persistence.
type Result struct {
	UserID     string `json:"user_id"`
	Profile    string `json:"profile,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Flashcards int    `json:"flashcards"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// Completed reports whether the run persisted a flashcard set.
func (r *Result) Completed() bool { return r.SkipReason == "" }

// Config carries the dependencies for NewOrchestrator.
type Config struct {
	// Profile, Research, and Cards are the three stages. Required.
	Profile  ProfileAnalyzer
	Research Researcher
	Cards    CardGenerator

	// KB receives the generated flashcard set. Required.
	KB *kb.KnowledgeBase

	// Runs records stage outcomes. Optional; recording failures are logged,
	// never fatal.
	Runs store.RunStore

	// MinResearchChars overrides the research-length floor (default: 100).
	MinResearchChars int

	// Logger receives structured logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// Orchestrator runs the learning pipeline for one user.
type Orchestrator struct {
	profile     ProfileAnalyzer
	research    Researcher
	cards       CardGenerator
	kb          *kb.KnowledgeBase
	runs        store.RunStore
	minResearch int
	log         *slog.Logger
}

// NewOrchestrator validates cfg and constructs an Orchestrator.
func NewOrchestrator(cfg *Config) (*Orchestrator, error) {
	if cfg == nil || cfg.Profile == nil || cfg.Research == nil || cfg.Cards == nil {
		return nil, fmt.Errorf("pipeline: all three stages are required")
	}
	if cfg.KB == nil {
		return nil, fmt.Errorf("pipeline: knowledge base is required")
	}
	minResearch := cfg.MinResearchChars
	if minResearch <= 0 {
		minResearch = minResearchChars
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		profile:     cfg.Profile,
		research:    cfg.Research,
		cards:       cfg.Cards,
		kb:          cfg.KB,
		runs:        cfg.Runs,
		minResearch: minResearch,
		log:         log,
	}, nil
}

// Run executes profile → research → flashcards → persist for the user the
// knowledge base is scoped to. A degenerate stage result short-circuits the
// run with a populated SkipReason and a nil error; only persistence failures
// surface as errors.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	userID := o.kb.UserID()
	res := &Result{UserID: userID}
	o.log.Info("pipeline run started", "user", userID)

	profile := o.profile.AnalyzeUserProfile(ctx)
	res.Profile = profile
	if agent.IsDegenerateProfile(profile) {
		res.SkipReason = "profile analysis produced no usable result"
		o.record(ctx, userID, store.StageProfile, store.StatusSkipped, profile)
		o.log.Info("pipeline stopped at profile stage", "user", userID, "detail", profile)
		return res, nil
	}
	o.record(ctx, userID, store.StageProfile, store.StatusCompleted, "")

	research := o.research.ResearchTopics(ctx, agent.SingleTopic(profile))
	if agent.IsDegenerateResearch(research) || len(strings.TrimSpace(research)) < o.minResearch {
		res.SkipReason = "research produced no usable content"
		o.record(ctx, userID, store.StageResearch, store.StatusSkipped, truncate(research, 500))
		o.log.Info("pipeline stopped at research stage",
			"user", userID, "research_chars", len(research))
		return res, nil
	}
	o.record(ctx, userID, store.StageResearch, store.StatusCompleted, "")

	cards, err := o.cards.Generate(ctx, research)
	if err != nil || len(cards) == 0 {
		res.SkipReason = "flashcard generation produced no cards"
		detail := ""
		if err != nil {
			detail = err.Error()
		}
		o.record(ctx, userID, store.StageFlashcards, store.StatusSkipped, detail)
		o.log.Warn("pipeline stopped at flashcard stage", "user", userID, "error", err)
		return res, nil
	}
	o.record(ctx, userID, store.StageFlashcards, store.StatusCompleted, "")

	topic := automatedTopicPrefix + time.Now().UTC().Format("2006-01-02 15:04")
	if err := o.kb.AddFlashcardSet(ctx, topic, cards, AutomatedSource); err != nil {
		o.record(ctx, userID, store.StagePersist, store.StatusFailed, err.Error())
		return res, fmt.Errorf("pipeline: storing flashcard set: %w", err)
	}
	o.record(ctx, userID, store.StagePersist, store.StatusCompleted, topic)

	res.Topic = topic
	res.Flashcards = len(cards)
	o.log.Info("pipeline run completed",
		"user", userID, "topic", topic, "flashcards", len(cards))
	return res, nil
}

// record writes one stage outcome, logging instead of failing when the
// history store is unavailable.
func (o *Orchestrator) record(ctx context.Context, userID string, stage store.Stage, status store.Status, detail string) {
	if o.runs == nil {
		return
	}
	if err := o.runs.Append(ctx, userID, stage, status, detail); err != nil {
		o.log.Warn("could not record pipeline stage",
			"user", userID, "stage", stage, "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
