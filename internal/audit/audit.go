// Package audit records CLI command invocations as structured log entries:
// which command ran, where its config came from, and the operational
// environment it saw. Secret values are reduced to set/unset before logging.
package audit

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// auditedEnv is the ordered env surface included in every audit entry.
// Keys marked secret log only their presence.
var auditedEnv = []struct {
	key    string
	secret bool
}{
	{"MODEL_PROVIDER", false},
	{"OLLAMA_HOST", false},
	{"OLLAMA_MODEL", false},
	{"OPENAI_API_KEY", true},
	{"OPENAI_MODEL", false},
	{"AZURE_OPENAI_API_KEY", true},
	{"AZURE_OPENAI_ENDPOINT", false},
	{"AZURE_OPENAI_DEPLOYMENT", false},
	{"GOOGLE_API_KEY", true},
	{"GEMINI_MODEL", false},
	{"AWS_REGION", false},
	{"BEDROCK_MODEL_ID", false},
	{"EMBEDDING_PROVIDER", false},
	{"EMBEDDING_MODEL", false},
	{"EMBEDDING_API_KEY", true},
	{"QDRANT_HOST", false},
	{"QDRANT_PORT", false},
	{"QDRANT_API_KEY", true},
	{"KOMPOW_API_KEY", true},
	{"KOMPOW_RUNS_DB", false},
	{"PIPELINE_MAX_DOCS", false},
	{"PIPELINE_MAX_FLASHCARDS", false},
	{"LOG_LEVEL", false},
	{"LOG_FORMAT", false},
	{"LANGFUSE_PUBLIC_KEY", true},
	{"LANGFUSE_SECRET_KEY", true},
}

var secretKeys = func() map[string]bool {
	m := make(map[string]bool)
	for _, e := range auditedEnv {
		if e.secret {
			m[e.key] = true
		}
	}
	m["AWS_SECRET_ACCESS_KEY"] = true
	m["AWS_SESSION_TOKEN"] = true
	return m
}()

// LogCommandStart emits one audit entry for a starting CLI command.
func LogCommandStart(log *slog.Logger, command string, configPath string) {
	attrs := make([]slog.Attr, 0, len(auditedEnv)+2)
	attrs = append(attrs,
		slog.String("command", command),
		slog.String("config_file", sanitiseConfigPath(configPath)),
	)
	for _, e := range auditedEnv {
		attrs = append(attrs, slog.String(e.key, SanitiseKey(e.key, os.Getenv(e.key))))
	}
	log.LogAttrs(context.TODO(), slog.LevelInfo, "audit: command start", attrs...)
}

// SanitiseKey maps a secret key's value to "set"/"unset" and passes
// non-secret values through, substituting "unset" for empty. Safe to embed
// in any log message.
func SanitiseKey(key, value string) string {
	if value == "" {
		return "unset"
	}
	if secretKeys[key] {
		return "set"
	}
	return value
}

// presence reports "set" or "unset" for a value.
func presence(v string) string {
	if v == "" {
		return "unset"
	}
	return "set"
}

// sanitiseConfigPath replaces the home directory prefix with "~" and maps
// an empty path to "none".
func sanitiseConfigPath(p string) string {
	if p == "" {
		return "none"
	}
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(p, home) {
		return "~" + strings.TrimPrefix(p, home)
	}
	return p
}
