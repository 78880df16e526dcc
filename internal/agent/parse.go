package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kompow/kompow-go/internal/kb"
)

// flashcardEnvelope is the JSON object the model is instructed to emit.
type flashcardEnvelope struct {
	Flashcards []kb.Flashcard `json:"flashcards"`
}

// parseFlashcardResponse extracts flashcards from a model response. Models
// often wrap JSON in markdown fences or surround it with prose, so the
// payload is located heuristically before strict parsing. Cards with blank
// fields are dropped; a response with no valid card at all is an error.
func parseFlashcardResponse(raw string) ([]kb.Flashcard, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("agent: no JSON payload found in model response")
	}

	var cards []kb.Flashcard

	var env flashcardEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err == nil && env.Flashcards != nil {
		cards = env.Flashcards
	} else if err := json.Unmarshal([]byte(payload), &cards); err != nil {
		return nil, fmt.Errorf("agent: model response is not a flashcard payload: %w", err)
	}

	valid := cards[:0]
	for _, c := range cards {
		c.Question = strings.TrimSpace(c.Question)
		c.Answer = strings.TrimSpace(c.Answer)
		if c.Question == "" || c.Answer == "" {
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("agent: model response contained no valid flashcards")
	}
	return valid, nil
}

// extractJSON locates the JSON payload in a model response: a fenced
// ```json block first, then the outermost object or array, whichever opens
// first — a bare array of cards must not be sliced at its first inner brace.
func extractJSON(s string) string {
	if fenced := insideFence(s); fenced != "" {
		s = fenced
	}

	brace := strings.Index(s, "{")
	bracket := strings.Index(s, "[")

	if bracket >= 0 && (brace < 0 || bracket < brace) {
		if end := strings.LastIndex(s, "]"); end > bracket {
			return s[bracket : end+1]
		}
	}
	if brace >= 0 {
		if end := strings.LastIndex(s, "}"); end > brace {
			return s[brace : end+1]
		}
	}
	return ""
}

// insideFence returns the contents of the first markdown code fence, or ""
// when the response has none.
func insideFence(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return ""
	}
	rest := s[start+3:]
	// Skip a language tag like "json" on the fence line.
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
