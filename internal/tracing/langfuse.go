// Package tracing wires optional Langfuse observability into the agent
// pipeline. Tracing is opt-in via environment variables; when unset, agents
// run without callbacks.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

// Setup builds the Langfuse callback handler when both LANGFUSE_PUBLIC_KEY
// and LANGFUSE_SECRET_KEY are present. LANGFUSE_HOST defaults to a local
// instance. Callers must invoke the returned flush function before exit so
// buffered traces reach the backend; when tracing is disabled the bool is
// false and both other returns are nil.
func Setup() (callbacks.Handler, func(), bool) {
	pub, sec := os.Getenv("LANGFUSE_PUBLIC_KEY"), os.Getenv("LANGFUSE_SECRET_KEY")
	if pub == "" || sec == "" {
		return nil, nil, false
	}

	host := os.Getenv("LANGFUSE_HOST")
	if host == "" {
		host = "http://localhost:3000"
	}

	handler, flush := langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      host,
		PublicKey: pub,
		SecretKey: sec,
	})
	return handler, flush, true
}
