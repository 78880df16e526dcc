package embedder

import (
	"log/slog"
	"os"
	"strings"

	"github.com/kompow/kompow-go/internal/credentials"
)

// knownChatModelPrefixes contains name fragments that identify chat models
// which are not suitable for embedding. If EMBEDDING_MODEL matches any of
// these, a warning is emitted so the operator knows the knowledge base may
// be misconfigured.
var knownChatModelPrefixes = []string{
	"gpt-4",
	"gpt-3.5",
	"gpt-35",
	"o1",
	"o3",
	"llama3",
	"llama2",
	"llama-3",
	"llama-2",
	"mistral",
	"mixtral",
	"gemma",
	"phi-",
	"phi3",
	"claude",
	"command-r",
	"deepseek",
	"qwen",
}

// looksLikeChatModel returns true when the model name resembles a known
// chat model rather than a dedicated embedding model.
func looksLikeChatModel(model string) bool {
	lower := strings.ToLower(model)
	for _, prefix := range knownChatModelPrefixes {
		if strings.Contains(lower, prefix) {
			return true
		}
	}
	return false
}

// WarnOnSuspectConfig is a pre-flight check run before constructing the
// embedder. Missing credentials are not an error here — the knowledge base
// downgrades to search-disabled mode — but the operator gets a clear warning
// at startup instead of a silent empty knowledge base.
func WarnOnSuspectConfig(log *slog.Logger, creds credentials.Provider) {
	backend := ResolveBackend()

	if backend != "ollama" && os.Getenv("EMBEDDING_PROVIDER") == "" {
		log.Warn("EMBEDDING_PROVIDER not set, inheriting chat provider as embedding backend",
			slog.String("backend", backend),
			slog.String("hint", "set EMBEDDING_PROVIDER=ollama (or openai/azure) to be explicit"),
		)
	}

	switch backend {
	case "openai":
		if _, ok := credentials.Configured(creds, "EMBEDDING_API_KEY"); !ok {
			if _, ok := credentials.Configured(creds, credentials.KeyOpenAI); !ok {
				log.Warn("no usable OpenAI API key, knowledge bases will run search-disabled",
					slog.String("hint", "set OPENAI_API_KEY or EMBEDDING_API_KEY"))
			}
		}
	case "azure":
		if _, ok := credentials.Configured(creds, "EMBEDDING_API_KEY"); !ok {
			if _, ok := credentials.Configured(creds, credentials.KeyAzureOpenAI); !ok {
				log.Warn("no usable Azure OpenAI API key, knowledge bases will run search-disabled",
					slog.String("hint", "set AZURE_OPENAI_API_KEY or EMBEDDING_API_KEY"))
			}
		}
	}

	model := os.Getenv("EMBEDDING_MODEL")
	if model != "" && looksLikeChatModel(model) {
		log.Warn("EMBEDDING_MODEL looks like a chat model, not an embedding model",
			slog.String("model", model),
			slog.String("hint", "use a dedicated embedding model e.g. nomic-embed-text, text-embedding-3-small"),
		)
	}
}
