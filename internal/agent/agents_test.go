package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kompow/kompow-go/internal/kb"
	"github.com/kompow/kompow-go/internal/rag"
)

// stubInvoker records the last prompt and returns a canned response.
type stubInvoker struct {
	response string
	err      error
	lastWant string
	calls    int
	prompts  []string
}

func (s *stubInvoker) Invoke(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

// memStore and constEmbedder are minimal rag fakes for building real
// knowledge-base handles in agent tests.
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
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func userKB(t *testing.T, store *memStore, user string) *kb.KnowledgeBase {
	t.Helper()
	m, err := kb.NewManager(&kb.ManagerConfig{Store: store, Embedder: constEmbedder{}})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	handle, err := m.UserKB(context.Background(), user)
	if err != nil {
		t.Fatalf("UserKB: %v", err)
	}
	return handle
}

func TestProfileAgentSentinels(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("nil knowledge base", func(t *testing.T) {
		t.Parallel()
		inv := &stubInvoker{response: "unused"}
		a, err := NewProfileAgent(&ProfileConfig{UserID: "u", Invoker: inv})
		if err != nil {
			t.Fatalf("NewProfileAgent: %v", err)
		}
		if got := a.AnalyzeUserProfile(ctx); got != MsgKBNotAvailable {
			t.Errorf("got %q, want MsgKBNotAvailable", got)
		}
		if inv.calls != 0 {
			t.Error("model invoked despite missing knowledge base")
		}
	})

	t.Run("empty knowledge base", func(t *testing.T) {
		t.Parallel()
		handle := userKB(t, newMemStore(), "u")
		inv := &stubInvoker{response: "unused"}
		a, _ := NewProfileAgent(&ProfileConfig{UserID: "u", KB: handle, Invoker: inv})
		if got := a.AnalyzeUserProfile(ctx); got != MsgNoDocuments {
			t.Errorf("got %q, want MsgNoDocuments", got)
		}
	})

	t.Run("documents without text", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		handle := userKB(t, store, "u")
		// Bypass AddDocument validation to simulate stored empty content.
		store.docs[handle.Collection()] = []rag.Document{{ID: "1", Content: "   "}}

		inv := &stubInvoker{response: "unused"}
		a, _ := NewProfileAgent(&ProfileConfig{UserID: "u", KB: handle, Invoker: inv})
		if got := a.AnalyzeUserProfile(ctx); got != MsgNoTextContent {
			t.Errorf("got %q, want MsgNoTextContent", got)
		}
	})

	t.Run("model error embedded", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		handle := userKB(t, store, "u")
		if err := handle.AddDocument(ctx, "kubernetes operators", nil, ""); err != nil {
			t.Fatalf("AddDocument: %v", err)
		}

		inv := &stubInvoker{err: errors.New("rate limited")}
		a, _ := NewProfileAgent(&ProfileConfig{UserID: "u", KB: handle, Invoker: inv})
		got := a.AnalyzeUserProfile(ctx)
		if !strings.Contains(got, "rate limited") || !IsDegenerateProfile(got) {
			t.Errorf("LLM error not embedded as degenerate result: %q", got)
		}
	})
}

func TestProfileAgentPromptAssembly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemStore()
	handle := userKB(t, store, "u")
	for _, text := range []string{"first document", "second document"} {
		if err := handle.AddDocument(ctx, text, nil, ""); err != nil {
			t.Fatalf("AddDocument: %v", err)
		}
	}

	inv := &stubInvoker{response: "Interested in Go."}
	a, _ := NewProfileAgent(&ProfileConfig{UserID: "u", KB: handle, Invoker: inv})

	got := a.AnalyzeUserProfile(ctx)
	if got != "Interested in Go." {
		t.Fatalf("profile = %q", got)
	}
	if IsDegenerateProfile(got) {
		t.Error("healthy profile classified degenerate")
	}
	if inv.calls != 1 {
		t.Fatalf("model invoked %d times, want 1", inv.calls)
	}
	prompt := inv.prompts[0]
	if !strings.Contains(prompt, "first document") || !strings.Contains(prompt, "second document") {
		t.Error("prompt missing document contents")
	}
	if !strings.Contains(prompt, docSeparator) {
		t.Error("documents not joined with the separator")
	}
}

func TestResearchAgent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no topics", func(t *testing.T) {
		t.Parallel()
		inv := &stubInvoker{response: "unused"}
		a, _ := NewResearchAgent(&ResearchConfig{Invoker: inv})

		for _, topics := range []Topics{
			TopicList(nil),
			TopicList([]string{"", "  "}),
			SingleTopic(""),
		} {
			if got := a.ResearchTopics(ctx, topics); got != MsgNoTopics {
				t.Errorf("got %q, want MsgNoTopics", got)
			}
		}
		if inv.calls != 0 {
			t.Error("model invoked for empty topics")
		}
	})

	t.Run("single invocation covers all topics", func(t *testing.T) {
		t.Parallel()
		inv := &stubInvoker{response: "Summary of both."}
		a, _ := NewResearchAgent(&ResearchConfig{Invoker: inv})

		got := a.ResearchTopics(ctx, TopicList([]string{"Go", " Raft "}))
		if got != "Summary of both." {
			t.Fatalf("research = %q", got)
		}
		if inv.calls != 1 {
			t.Fatalf("model invoked %d times, want 1", inv.calls)
		}
		if !strings.Contains(inv.prompts[0], "Go, Raft") {
			t.Errorf("topics not joined into one prompt: %q", inv.prompts[0])
		}
	})

	t.Run("error embedded", func(t *testing.T) {
		t.Parallel()
		inv := &stubInvoker{err: errors.New("backend down")}
		a, _ := NewResearchAgent(&ResearchConfig{Invoker: inv})

		got := a.ResearchTopics(ctx, SingleTopic("Go"))
		if !strings.Contains(got, "backend down") || !IsDegenerateResearch(got) {
			t.Errorf("error not embedded as degenerate result: %q", got)
		}
	})
}

func TestSoundsUnableToFind(t *testing.T) {
	t.Parallel()

	if !soundsUnableToFind("I'm sorry, I was unable to find information on that topic.") {
		t.Error("apology response not detected")
	}
	if soundsUnableToFind("Here is a detailed summary of Raft consensus.") {
		t.Error("healthy response flagged as apology")
	}
}

func TestFlashcardAgentGenerate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()
		inv := &stubInvoker{response: `{"flashcards":[{"question":"Q","answer":"A"}]}`}
		a, _ := NewFlashcardAgent(&FlashcardConfig{Invoker: inv})

		cards, err := a.Generate(ctx, "educational text")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(cards) != 1 || cards[0].Question != "Q" {
			t.Errorf("cards = %+v", cards)
		}
	})

	t.Run("empty input rejected without invocation", func(t *testing.T) {
		t.Parallel()
		inv := &stubInvoker{response: "unused"}
		a, _ := NewFlashcardAgent(&FlashcardConfig{Invoker: inv})

		if _, err := a.Generate(ctx, "   "); err == nil {
			t.Error("blank content accepted")
		}
		if inv.calls != 0 {
			t.Error("model invoked for blank content")
		}
	})

	t.Run("unparsable response is a soft error", func(t *testing.T) {
		t.Parallel()
		inv := &stubInvoker{response: "no json here"}
		a, _ := NewFlashcardAgent(&FlashcardConfig{Invoker: inv})

		cards, err := a.Generate(ctx, "text")
		if err == nil {
			t.Fatal("unparsable response accepted")
		}
		if len(cards) != 0 {
			t.Errorf("cards = %+v, want none", cards)
		}
	})

	t.Run("caps at max cards", func(t *testing.T) {
		t.Parallel()
		inv := &stubInvoker{response: `{"flashcards":[` +
			`{"question":"1","answer":"a"},{"question":"2","answer":"a"},{"question":"3","answer":"a"}]}`}
		a, _ := NewFlashcardAgent(&FlashcardConfig{Invoker: inv, MaxCards: 2})

		cards, err := a.Generate(ctx, "text")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(cards) != 2 {
			t.Errorf("got %d cards, want 2", len(cards))
		}
	})
}

func TestConstructorsRequireInvoker(t *testing.T) {
	t.Parallel()

	if _, err := NewProfileAgent(&ProfileConfig{}); err == nil {
		t.Error("profile agent constructed without invoker")
	}
	if _, err := NewResearchAgent(nil); err == nil {
		t.Error("research agent constructed without invoker")
	}
	if _, err := NewFlashcardAgent(&FlashcardConfig{}); err == nil {
		t.Error("flashcard agent constructed without invoker")
	}
}
