package kb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Metadata keys attached to documents stored in a knowledge base.
const (
	// MetaDocType marks the kind of document ("general" or "flashcard_set").
	MetaDocType = "doc_type"

	// MetaTopic is the human-readable topic label of a flashcard set.
	MetaTopic = "topic"

	// MetaUserID records the owning user on every stored document.
	MetaUserID = "user_id"

	// MetaCreationDate is the RFC3339 timestamp a flashcard set was stored.
	MetaCreationDate = "creation_date"
)

// Document type values for MetaDocType.
const (
	DocTypeGeneral      = "general"
	DocTypeFlashcardSet = "flashcard_set"
)

// DefaultFlashcardSource labels flashcard sets stored without an explicit
// source, matching manually triggered generation.
const DefaultFlashcardSource = "on_demand_generation"

// Flashcard is a single question/answer pair.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// EncodeFlashcards serializes a flashcard set to its canonical JSON document
// content. It rejects empty sets and cards with blank fields so a malformed
// payload never reaches the vector store.
func EncodeFlashcards(cards []Flashcard) (string, error) {
	if len(cards) == 0 {
		return "", fmt.Errorf("kb: flashcard set is empty")
	}
	for i, c := range cards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			return "", fmt.Errorf("kb: flashcard %d has a blank question or answer", i)
		}
	}

	data, err := json.Marshal(cards)
	if err != nil {
		return "", fmt.Errorf("kb: failed to encode flashcards: %w", err)
	}
	return string(data), nil
}

// DecodeFlashcards parses document content previously written by
// EncodeFlashcards. Content that is not a JSON list of question/answer
// objects yields nil — readers treat such documents as holding no flashcards
// rather than failing.
func DecodeFlashcards(content string) []Flashcard {
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.DisallowUnknownFields()

	var cards []Flashcard
	if err := dec.Decode(&cards); err != nil {
		return nil
	}
	for _, c := range cards {
		if c.Question == "" || c.Answer == "" {
			return nil
		}
	}
	return cards
}

// collectionUnsafe matches every character not allowed in a collection name.
var collectionUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// collectionSeparators are characters commonly found in user identifiers
// (emails, URLs) that map to underscores rather than being dropped.
var collectionSeparators = regexp.MustCompile(`[.@:\-/]`)

// CollectionForUser derives the vector-store collection name for a user.
// The mapping is deterministic: the same user ID always yields the same
// collection, and identifiers that differ only in unsafe characters stay
// distinguishable through their separator positions.
func CollectionForUser(userID string) string {
	s := collectionSeparators.ReplaceAllString(userID, "_")
	s = collectionUnsafe.ReplaceAllString(s, "")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "default_collection"
	}
	return "user_" + s
}
