// Package credentials provides read-only lookup of named API credentials.
// Components take a [Provider] at construction time instead of reading
// ambient process state, so misconfiguration surfaces as an explicit
// construction-time failure and tests can inject credentials directly.
//
// A credential equal to [Placeholder] is treated the same as an absent one:
// it is the value shipped in example .env files and means "not configured".
package credentials

import "os"

// Well-known credential keys looked up by kompow components.
const (
	// KeyOpenAI is the OpenAI API key used for both chat and embeddings.
	KeyOpenAI = "OPENAI_API_KEY"

	// KeyGoogle is the Google API key used for the Gemini backend.
	KeyGoogle = "GOOGLE_API_KEY"

	// KeyAzureOpenAI is the Azure OpenAI Service API key.
	KeyAzureOpenAI = "AZURE_OPENAI_API_KEY"

	// KeyQdrant is the optional Qdrant API key for authenticated clusters.
	KeyQdrant = "QDRANT_API_KEY"
)

// Placeholder is the sample value shipped in example configuration files.
// A credential with this value is treated as not configured.
const Placeholder = "your_openai_api_key_here"

// Provider is the read-only credential lookup interface.
// Implementations must be safe to call from multiple goroutines.
type Provider interface {
	// Lookup returns the credential value for key and whether it was present.
	// An empty value with ok=true is possible; use [Configured] to treat
	// empty and placeholder values as absent.
	Lookup(key string) (value string, ok bool)
}

// Env is a Provider backed by process environment variables.
type Env struct{}

// Lookup reads the named environment variable.
func (Env) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Static is an in-memory Provider used in tests.
type Static map[string]string

// Lookup returns the value stored under key.
func (s Static) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Configured returns the credential for key, treating absent, empty, and
// placeholder values uniformly as "not configured".
func Configured(p Provider, key string) (string, bool) {
	v, ok := p.Lookup(key)
	if !ok || v == "" || v == Placeholder {
		return "", false
	}
	return v, true
}
