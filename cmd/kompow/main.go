// Command kompow is the entry point for the kompow learning assistant.
// It provides a CLI (via Cobra) for ingesting content, running the learning
// pipeline, and browsing flashcards, plus an optional HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/kompow/kompow-go/cmd/kompow/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
