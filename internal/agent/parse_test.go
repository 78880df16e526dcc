package agent

import (
	"strings"
	"testing"
)

func TestParseFlashcardResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantCards int
		wantErr   bool
	}{
		{
			name:      "clean envelope",
			raw:       `{"flashcards":[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]}`,
			wantCards: 2,
		},
		{
			name: "fenced json",
			raw: "Here you go:\n```json\n" +
				`{"flashcards":[{"question":"Q","answer":"A"}]}` + "\n```\nEnjoy!",
			wantCards: 1,
		},
		{
			name:      "surrounding prose",
			raw:       `Sure! {"flashcards":[{"question":"Q","answer":"A"}]} Hope that helps.`,
			wantCards: 1,
		},
		{
			name:      "bare array",
			raw:       `[{"question":"Q","answer":"A"}]`,
			wantCards: 1,
		},
		{
			name:      "bare array with several cards",
			raw:       `[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`,
			wantCards: 2,
		},
		{
			name:      "bare array in prose",
			raw:       `Here are your cards: [{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}] Enjoy!`,
			wantCards: 2,
		},
		{
			name:      "blank cards dropped",
			raw:       `{"flashcards":[{"question":"Q","answer":"A"},{"question":"","answer":"x"},{"question":" ","answer":" "}]}`,
			wantCards: 1,
		},
		{
			name:    "no json at all",
			raw:     "I could not generate flashcards for this text.",
			wantErr: true,
		},
		{
			name:    "json but wrong shape",
			raw:     `{"cards": "none"}`,
			wantErr: true,
		},
		{
			name:    "all cards blank",
			raw:     `{"flashcards":[{"question":"","answer":""}]}`,
			wantErr: true,
		},
		{
			name:    "empty list",
			raw:     `{"flashcards":[]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cards, err := parseFlashcardResponse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d cards", len(cards))
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlashcardResponse: %v", err)
			}
			if len(cards) != tt.wantCards {
				t.Errorf("parsed %d cards, want %d", len(cards), tt.wantCards)
			}
			for _, c := range cards {
				if c.Question == "" || c.Answer == "" {
					t.Errorf("blank card leaked through: %+v", c)
				}
			}
		})
	}
}

func TestExtractJSONFencePrecedence(t *testing.T) {
	t.Parallel()

	raw := "prose with {stray braces}\n```json\n[1, 2]\n```"
	got := extractJSON(raw)
	if !strings.Contains(got, "[1, 2]") {
		t.Errorf("extractJSON = %q, want the fenced payload", got)
	}
}
