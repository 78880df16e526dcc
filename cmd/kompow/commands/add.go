package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kompow/kompow-go/internal/logging"
)

// NewAddCmd constructs the `kompow add` command, which stores a single text
// document in a user's knowledge base.
func NewAddCmd() *cobra.Command {
	var userID string
	var source string
	var file string

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a text document to a user's knowledge base",
		Long: `Store a piece of text in the user's knowledge base.

Content comes from the argument, from --file, or from stdin when piped.

Examples:
  kompow add --user alice@example.com "Raft elects a leader via randomized timeouts"
  kompow add --user alice@example.com --file notes.md --source "lecture notes"
  pbpaste | kompow add --user alice@example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			content, err := resolveContent(args, file)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			if strings.TrimSpace(content) == "" {
				return fmt.Errorf("add: no content provided — pass text, --file, or pipe stdin")
			}

			a, err := buildApp(ctx, log, false)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			defer a.close()

			if err := a.svc.AddDocument(ctx, userID, content, source); err != nil {
				return fmt.Errorf("add: %w", err)
			}

			fmt.Printf("Stored %d characters for %s\n", len(content), userID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose knowledge base receives the document")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Optional source label recorded with the document")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read content from this file instead of the argument")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// resolveContent picks the document text from the argument, a file, or
// piped stdin, in that order.
func resolveContent(args []string, file string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %q: %w", file, err)
		}
		return string(data), nil
	}

	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat stdin: %w", err)
	}
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
