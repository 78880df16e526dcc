package audit

import (
	"os"
	"testing"
)

func TestSanitiseKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		key, value, want string
	}{
		{"OPENAI_API_KEY", "sk-abc123", "set"},
		{"KOMPOW_API_KEY", "", "unset"},
		{"LANGFUSE_SECRET_KEY", "sk-lf-1", "set"},
		{"MODEL_PROVIDER", "azure", "azure"},
		{"MODEL_PROVIDER", "", "unset"},
		{"QDRANT_HOST", "localhost", "localhost"},
	}
	for _, tc := range cases {
		if got := SanitiseKey(tc.key, tc.value); got != tc.want {
			t.Errorf("SanitiseKey(%q, %q) = %q, want %q", tc.key, tc.value, got, tc.want)
		}
	}
}

func TestPresence(t *testing.T) {
	t.Parallel()

	if got := presence("something"); got != "set" {
		t.Errorf("presence(non-empty) = %q, want set", got)
	}
	if got := presence(""); got != "unset" {
		t.Errorf("presence(empty) = %q, want unset", got)
	}
}

func TestSanitiseConfigPath(t *testing.T) {
	t.Parallel()

	if got := sanitiseConfigPath(""); got != "none" {
		t.Errorf("empty path = %q, want none", got)
	}
	if got := sanitiseConfigPath("/tmp/config.yaml"); got != "/tmp/config.yaml" {
		t.Errorf("non-home path = %q, want unchanged", got)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	if got := sanitiseConfigPath(home + "/.kompow/config.yaml"); got != "~/.kompow/config.yaml" {
		t.Errorf("home path = %q, want ~/.kompow/config.yaml", got)
	}
}
