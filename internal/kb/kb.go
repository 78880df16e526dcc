// Package kb implements the per-user knowledge base: a namespaced view over
// a shared vector store with an optional embedding capability.
//
// A handle is always constructible. When no embedder is configured the
// handle runs in a degraded mode: writes fail with ErrSearchDisabled and
// reads report empty results, so callers can render "nothing found" without
// branching on configuration state.
package kb

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kompow/kompow-go/internal/rag"
)

// ErrSearchDisabled is returned by write operations on a knowledge base that
// has no embedding capability configured.
var ErrSearchDisabled = errors.New("kb: embedding capability not configured, writes and search are disabled")

// State reports whether a knowledge base handle can embed and search.
type State string

const (
	// StateReady means the handle has an embedder and full functionality.
	StateReady State = "ready"

	// StateSearchDisabled means no embedder is configured: writes fail,
	// reads return empty results.
	StateSearchDisabled State = "search_disabled"
)

// topicScanLimit bounds how many flashcard sets a topic listing scans.
const topicScanLimit = 200

// overfetchFactor widens semantic searches that are filtered client-side,
// so metadata filtering still fills the requested limit.
const overfetchFactor = 10

// KnowledgeBase is a per-user handle over the vector store.
// Obtain handles through [Manager.UserKB]; the zero value is not usable.
type KnowledgeBase struct {
	userID     string
	collection string
	store      rag.VectorStore
	embedder   rag.Embedder
	retriever  rag.Retriever
	log        *slog.Logger
}

// UserID returns the user this handle is scoped to.
func (k *KnowledgeBase) UserID() string { return k.userID }

// Collection returns the vector-store collection backing this handle.
func (k *KnowledgeBase) Collection() string { return k.collection }

// State reports whether this handle can embed and search.
func (k *KnowledgeBase) State() State {
	if k.embedder == nil {
		return StateSearchDisabled
	}
	return StateReady
}

// AddDocument embeds content and stores it in the user's collection.
// The id defaults to a content hash when empty; metadata gains doc_type and
// user_id defaults. Returns ErrSearchDisabled when no embedder is configured.
func (k *KnowledgeBase) AddDocument(ctx context.Context, content string, metadata map[string]string, id string) error {
	if k.embedder == nil {
		k.log.Warn("document rejected, knowledge base has no embedder", "user", k.userID)
		return ErrSearchDisabled
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("kb: document content is empty")
	}

	if id == "" {
		id = contentID(k.userID, content)
	}

	meta := make(map[string]string, len(metadata)+2)
	for key, v := range metadata {
		meta[key] = v
	}
	if meta[MetaDocType] == "" {
		meta[MetaDocType] = DocTypeGeneral
	}
	meta[MetaUserID] = k.userID

	embeddings, err := k.embedder.Embed(ctx, []string{content})
	if err != nil {
		return fmt.Errorf("kb: failed to embed document: %w", err)
	}

	doc := rag.Document{
		ID:       id,
		Content:  content,
		Source:   meta["source"],
		Metadata: meta,
	}
	if err := k.store.Upsert(ctx, k.collection, []rag.Document{doc}, embeddings); err != nil {
		return fmt.Errorf("kb: failed to store document: %w", err)
	}

	k.log.Debug("document stored",
		"user", k.userID,
		"doc_id", id,
		"doc_type", meta[MetaDocType])
	return nil
}

// Query performs a semantic search over the user's documents.
// On a handle without an embedder it returns (nil, nil): degraded reads
// report emptiness, they do not fail.
func (k *KnowledgeBase) Query(ctx context.Context, query string, limit int) ([]rag.Document, error) {
	if k.retriever == nil {
		k.log.Debug("query on search-disabled knowledge base returns empty", "user", k.userID)
		return nil, nil
	}
	if strings.TrimSpace(query) == "" {
		// An empty query still means "give me relevant documents"; use the
		// user scope itself as the probe text.
		query = "documents for user " + k.userID
	}

	docs, err := k.retriever.Retrieve(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("kb: query failed: %w", err)
	}
	return docs, nil
}

// AddFlashcardSet validates and stores a flashcard set as a single document
// with flashcard metadata. An empty topic or an invalid card set is rejected
// before anything reaches the store.
func (k *KnowledgeBase) AddFlashcardSet(ctx context.Context, topic string, cards []Flashcard, source string) error {
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("kb: flashcard set topic is empty")
	}

	content, err := EncodeFlashcards(cards)
	if err != nil {
		return err
	}

	if source == "" {
		source = DefaultFlashcardSource
	}

	now := time.Now().UTC()
	meta := map[string]string{
		MetaDocType:      DocTypeFlashcardSet,
		MetaTopic:        topic,
		MetaCreationDate: now.Format(time.RFC3339),
		"source":         source,
	}

	id := fmt.Sprintf("flashcards_%s_%d", contentID(k.userID, topic), now.UnixMilli())
	if err := k.AddDocument(ctx, content, meta, id); err != nil {
		return err
	}

	k.log.Info("flashcard set stored",
		"user", k.userID,
		"topic", topic,
		"cards", len(cards))
	return nil
}

// FlashcardSets returns the user's stored flashcard-set documents, newest
// first. A non-empty topicFilter selects exact, case-sensitive topic matches.
// Degraded handles return (nil, nil).
func (k *KnowledgeBase) FlashcardSets(ctx context.Context, topicFilter string, limit int) ([]rag.Document, error) {
	if k.retriever == nil {
		k.log.Debug("flashcard listing on search-disabled knowledge base returns empty", "user", k.userID)
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	// Flashcard sets are found by a broad semantic probe and then filtered
	// on metadata; the vector store itself is not asked to filter.
	probe := "flashcard sets for user " + k.userID
	if topicFilter != "" {
		probe = "flashcards about " + topicFilter
	}

	docs, err := k.retriever.Retrieve(ctx, probe, limit*overfetchFactor)
	if err != nil {
		return nil, fmt.Errorf("kb: flashcard search failed: %w", err)
	}

	sets := make([]rag.Document, 0, limit)
	for _, d := range docs {
		if d.Metadata[MetaDocType] != DocTypeFlashcardSet {
			continue
		}
		if d.Metadata[MetaUserID] != k.userID {
			continue
		}
		if topicFilter != "" && d.Metadata[MetaTopic] != topicFilter {
			continue
		}
		sets = append(sets, d)
	}

	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].Metadata[MetaCreationDate] > sets[j].Metadata[MetaCreationDate]
	})
	if len(sets) > limit {
		sets = sets[:limit]
	}
	return sets, nil
}

// FlashcardTopics returns the distinct topics of the user's flashcard sets
// in sorted order. Degraded handles return (nil, nil).
func (k *KnowledgeBase) FlashcardTopics(ctx context.Context) ([]string, error) {
	sets, err := k.FlashcardSets(ctx, "", topicScanLimit)
	if err != nil {
		return nil, err
	}
	if sets == nil {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(sets))
	topics := make([]string, 0, len(sets))
	for _, d := range sets {
		t := d.Metadata[MetaTopic]
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		topics = append(topics, t)
	}

	sort.Strings(topics)
	return topics, nil
}

// contentID derives a stable document ID from the user scope and content.
func contentID(userID, content string) string {
	sum := sha256.Sum256([]byte(userID + "\x00" + content))
	return fmt.Sprintf("%x", sum[:16])
}
