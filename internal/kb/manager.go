package kb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kompow/kompow-go/internal/rag"
)

// Manager hands out per-user knowledge-base handles over a shared vector
// store. The embedder is optional: a Manager without one still produces
// handles, in search-disabled mode.
type Manager struct {
	store    rag.VectorStore
	embedder rag.Embedder
	log      *slog.Logger
}

// ManagerConfig carries the dependencies for NewManager.
type ManagerConfig struct {
	// Store is the shared vector store. Required.
	Store rag.VectorStore

	// Embedder converts text to vectors. Optional; when nil every handle
	// the manager produces is search-disabled.
	Embedder rag.Embedder

	// Logger receives structured logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// NewManager validates cfg and constructs a Manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	if cfg == nil || cfg.Store == nil {
		return nil, fmt.Errorf("kb: vector store is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.Embedder == nil {
		log.Warn("knowledge bases will run search-disabled, no embedder configured")
	}
	return &Manager{store: cfg.Store, embedder: cfg.Embedder, log: log}, nil
}

// SearchEnabled reports whether handles from this manager can embed.
func (m *Manager) SearchEnabled() bool { return m.embedder != nil }

// UserKB returns the knowledge-base handle for userID, creating the backing
// collection on first use. The handle is returned even when the manager has
// no embedder; only collection creation failures are fatal.
func (m *Manager) UserKB(ctx context.Context, userID string) (*KnowledgeBase, error) {
	if userID == "" {
		return nil, fmt.Errorf("kb: user ID is empty")
	}

	collection := CollectionForUser(userID)
	if err := m.store.EnsureCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("kb: failed to prepare collection for user %q: %w", userID, err)
	}

	handle := &KnowledgeBase{
		userID:     userID,
		collection: collection,
		store:      m.store,
		embedder:   m.embedder,
		log:        m.log.With("collection", collection),
	}
	if m.embedder != nil {
		retriever, err := rag.NewRetriever(m.embedder, m.store, collection, 10)
		if err != nil {
			return nil, fmt.Errorf("kb: failed to build retriever: %w", err)
		}
		handle.retriever = retriever
	}
	return handle, nil
}
