package budget

import (
	"strings"
	"testing"

	"github.com/kompow/kompow-go/internal/rag"
)

func TestEstimate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"ab", 1}, // short non-empty strings round up to 1
		{"abcd", 1},
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		if got := Estimate(tt.in); got != tt.want {
			t.Errorf("Estimate(%d chars) = %d, want %d", len(tt.in), got, tt.want)
		}
	}
}

func TestTrimDocuments(t *testing.T) {
	t.Parallel()

	doc := func(n int) rag.Document {
		return rag.Document{Content: strings.Repeat("a", n*charsPerToken)}
	}

	t.Run("under budget untouched", func(t *testing.T) {
		t.Parallel()
		docs := []rag.Document{doc(10), doc(10)}
		got := TrimDocuments(docs, 0, 100)
		if len(got) != 2 {
			t.Errorf("trimmed to %d docs, want 2", len(got))
		}
	})

	t.Run("drops least relevant tail first", func(t *testing.T) {
		t.Parallel()
		docs := []rag.Document{doc(40), doc(40), doc(40)}
		got := TrimDocuments(docs, 0, 90)
		if len(got) != 2 {
			t.Fatalf("trimmed to %d docs, want 2", len(got))
		}
		if got[0].Content != docs[0].Content {
			t.Error("head of slice was dropped instead of tail")
		}
	})

	t.Run("reserved counts against the budget", func(t *testing.T) {
		t.Parallel()
		docs := []rag.Document{doc(40), doc(40)}
		got := TrimDocuments(docs, 50, 100)
		if len(got) != 1 {
			t.Errorf("trimmed to %d docs, want 1", len(got))
		}
	})

	t.Run("single oversized doc yields empty", func(t *testing.T) {
		t.Parallel()
		got := TrimDocuments([]rag.Document{doc(500)}, 0, 100)
		if len(got) != 0 {
			t.Errorf("trimmed to %d docs, want 0", len(got))
		}
	})

	t.Run("zero budget uses default", func(t *testing.T) {
		t.Parallel()
		docs := []rag.Document{doc(100)}
		if got := TrimDocuments(docs, 0, 0); len(got) != 1 {
			t.Errorf("default budget dropped documents it should keep")
		}
	})
}
