package rag

import (
	"context"
	"fmt"
)

// DefaultRetriever answers queries against one collection: it embeds the
// query text, then asks the store for the nearest documents.
type DefaultRetriever struct {
	embedder    Embedder
	store       VectorStore
	collection  string
	defaultTopK int
}

// NewRetriever binds an embedder and store to a collection. defaultTopK is
// used whenever Retrieve is called with topK <= 0 (falls back to 5 itself
// when non-positive).
func NewRetriever(embedder Embedder, store VectorStore, collection string, defaultTopK int) (*DefaultRetriever, error) {
	switch {
	case embedder == nil:
		return nil, fmt.Errorf("rag: embedder must not be nil")
	case store == nil:
		return nil, fmt.Errorf("rag: store must not be nil")
	case collection == "":
		return nil, fmt.Errorf("rag: collection must not be empty")
	}
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &DefaultRetriever{
		embedder:    embedder,
		store:       store,
		collection:  collection,
		defaultTopK: defaultTopK,
	}, nil
}

// Retrieve returns the documents most similar to query, best match first.
func (r *DefaultRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Document, error) {
	if topK <= 0 {
		topK = r.defaultTopK
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("rag: embedding query failed: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("rag: embedder returned empty result for query")
	}

	docs, err := r.store.Search(ctx, r.collection, vecs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search failed: %w", err)
	}
	return docs, nil
}
