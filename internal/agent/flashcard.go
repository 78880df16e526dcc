package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kompow/kompow-go/internal/kb"
)

// FlashcardSystemPrompt instructs the generation model to emit strict JSON.
const FlashcardSystemPrompt = `You create study flashcards from educational ` +
	`text. Respond with a single JSON object of the form ` +
	`{"flashcards": [{"question": "...", "answer": "..."}]} and nothing else. ` +
	`Questions must be answerable from the provided text alone.`

// defaultMaxFlashcards bounds how many cards one generation may request.
const defaultMaxFlashcards = 10

// FlashcardAgent turns researched text into question/answer pairs.
type FlashcardAgent struct {
	invoker  Invoker
	maxCards int
	log      *slog.Logger
}

// FlashcardConfig carries the dependencies for NewFlashcardAgent.
type FlashcardConfig struct {
	// Invoker runs the model. Required.
	Invoker Invoker

	// MaxCards bounds the number of cards requested per generation
	// (default: 10).
	MaxCards int

	// Logger receives structured logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// NewFlashcardAgent validates cfg and constructs a FlashcardAgent.
func NewFlashcardAgent(cfg *FlashcardConfig) (*FlashcardAgent, error) {
	if cfg == nil || cfg.Invoker == nil {
		return nil, fmt.Errorf("agent: flashcard agent requires an invoker")
	}
	maxCards := cfg.MaxCards
	if maxCards <= 0 {
		maxCards = defaultMaxFlashcards
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &FlashcardAgent{invoker: cfg.Invoker, maxCards: maxCards, log: log}, nil
}

// Generate produces flashcards from content. A model response that cannot
// be parsed into valid cards yields (nil, err) — a soft failure the caller
// may log and absorb; generation problems never panic or abort a pipeline.
func (a *FlashcardAgent) Generate(ctx context.Context, content string) ([]kb.Flashcard, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("agent: no content to generate flashcards from")
	}

	prompt := fmt.Sprintf("Create up to %d flashcards from the following "+
		"text.\n\nText:\n%s", a.maxCards, content)

	out, err := a.invoker.Invoke(ctx, prompt)
	if err != nil {
		a.log.Error("flashcard generation failed", "error", err)
		return nil, fmt.Errorf("agent: flashcard generation failed: %w", err)
	}

	cards, err := parseFlashcardResponse(out)
	if err != nil {
		a.log.Warn("flashcard response could not be parsed",
			"error", err, "response_chars", len(out))
		return nil, err
	}
	if len(cards) > a.maxCards {
		cards = cards[:a.maxCards]
	}

	a.log.Info("flashcards generated", "cards", len(cards))
	return cards, nil
}
