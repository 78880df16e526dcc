// Package budget provides token budget estimation and document trimming for
// the agent pipeline. Because the pipeline supports multiple LLM backends
// with different tokenizers, this package uses a conservative character-based
// heuristic: 1 token ≈ 4 characters (English prose and code). This
// deliberately under-estimates token counts to leave headroom for
// model-specific overhead.
package budget

import (
	"github.com/kompow/kompow-go/internal/rag"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English and code; using 3
	// would be more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models while leaving room
	// for the output. Override via the pipeline configuration.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateDocuments returns the estimated total token count for a slice of
// documents, including a small per-document overhead for separators.
func EstimateDocuments(docs []rag.Document) int {
	total := 0
	for _, d := range docs {
		total += 2
		total += Estimate(d.Content)
	}
	return total
}

// TrimDocuments drops documents from the tail of docs until the estimated
// token count of reserved + docs fits within maxTokens. Retrieval returns
// documents most-relevant-first, so the tail holds the least relevant ones.
// reserved accounts for prompt text around the documents.
//
// Returns the (possibly shortened) prefix of docs. If even a single document
// overflows the budget the empty slice is returned.
func TrimDocuments(docs []rag.Document, reserved, maxTokens int) []rag.Document {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxContextTokens
	}
	for len(docs) > 0 {
		if reserved+EstimateDocuments(docs) <= maxTokens {
			break
		}
		docs = docs[:len(docs)-1]
	}
	return docs
}
