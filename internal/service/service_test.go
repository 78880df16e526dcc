package service

import (
	"context"
	"testing"

	"github.com/kompow/kompow-go/internal/kb"
	"github.com/kompow/kompow-go/internal/rag"
)

type memStore struct {
	docs map[string][]rag.Document
}

func newMemStore() *memStore { return &memStore{docs: make(map[string][]rag.Document)} }

func (m *memStore) EnsureCollection(context.Context, string) error { return nil }

func (m *memStore) Upsert(_ context.Context, collection string, docs []rag.Document, _ [][]float32) error {
	m.docs[collection] = append(m.docs[collection], docs...)
	return nil
}

func (m *memStore) Search(_ context.Context, collection string, _ []float32, topK int) ([]rag.Document, error) {
	docs := m.docs[collection]
	if len(docs) > topK {
		docs = docs[:topK]
	}
	return docs, nil
}

func (m *memStore) Delete(context.Context, string, []string) error { return nil }
func (m *memStore) Close() error                                   { return nil }

type constEmbedder struct{}

func (constEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func newService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	vs := newMemStore()
	m, err := kb.NewManager(&kb.ManagerConfig{Store: vs, Embedder: constEmbedder{}})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	svc, err := New(&Config{KBs: m})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, vs
}

func TestNewValidation(t *testing.T) {
	t.Parallel()
	if _, err := New(nil); err == nil {
		t.Error("nil config accepted")
	}
	if _, err := New(&Config{}); err == nil {
		t.Error("missing manager accepted")
	}
}

func TestRunPipelineRequiresModel(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	if _, err := svc.RunPipeline(context.Background(), "alice"); err == nil {
		t.Error("pipeline ran without a chat model")
	}
}

func TestAddDocumentStoresWithSource(t *testing.T) {
	t.Parallel()
	svc, vs := newService(t)

	if err := svc.AddDocument(context.Background(), "alice", "notes on raft", "manual"); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	collection := kb.CollectionForUser("alice")
	docs := vs.docs[collection]
	if len(docs) != 1 {
		t.Fatalf("stored %d documents, want 1", len(docs))
	}
	if docs[0].Metadata["source"] != "manual" {
		t.Errorf("source = %q", docs[0].Metadata["source"])
	}
}

func TestFlashcardSetsDecodesAndSkipsBroken(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	// Store a valid set through the knowledge base, and a broken flashcard
	// document directly.
	handle, err := svc.kbs.UserKB(ctx, "alice")
	if err != nil {
		t.Fatalf("UserKB: %v", err)
	}
	cards := []kb.Flashcard{{Question: "What is Raft?", Answer: "A consensus protocol."}}
	if err := handle.AddFlashcardSet(ctx, "Consensus", cards, ""); err != nil {
		t.Fatalf("AddFlashcardSet: %v", err)
	}
	broken := map[string]string{kb.MetaDocType: kb.DocTypeFlashcardSet, kb.MetaTopic: "Broken"}
	if err := handle.AddDocument(ctx, "not json", broken, "broken_set"); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	sets, err := svc.FlashcardSets(ctx, "alice", "", 10)
	if err != nil {
		t.Fatalf("FlashcardSets: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1 (broken set skipped)", len(sets))
	}
	got := sets[0]
	if got.Topic != "Consensus" {
		t.Errorf("Topic = %q", got.Topic)
	}
	if got.Source != kb.DefaultFlashcardSource {
		t.Errorf("Source = %q", got.Source)
	}
	if len(got.Cards) != 1 || got.Cards[0].Question != "What is Raft?" {
		t.Errorf("Cards = %+v", got.Cards)
	}
}

func TestFlashcardTopics(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	handle, err := svc.kbs.UserKB(ctx, "alice")
	if err != nil {
		t.Fatalf("UserKB: %v", err)
	}
	cards := []kb.Flashcard{{Question: "Q", Answer: "A"}}
	for _, topic := range []string{"Networking", "Databases", "Networking"} {
		if err := handle.AddFlashcardSet(ctx, topic, cards, ""); err != nil {
			t.Fatalf("AddFlashcardSet(%s): %v", topic, err)
		}
	}

	topics, err := svc.FlashcardTopics(ctx, "alice")
	if err != nil {
		t.Fatalf("FlashcardTopics: %v", err)
	}
	if len(topics) != 2 || topics[0] != "Databases" || topics[1] != "Networking" {
		t.Errorf("topics = %v", topics)
	}
}

func TestRecentRunsWithoutStore(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	runs, err := svc.RecentRuns(context.Background(), "alice", 5)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if runs != nil {
		t.Errorf("runs = %v, want nil without a run store", runs)
	}
}
