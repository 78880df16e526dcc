package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kompow/kompow-go/internal/logging"
)

// NewIngestCmd constructs the `kompow ingest` command, which fetches web
// pages and stores their readable content in a user's knowledge base.
func NewIngestCmd() *cobra.Command {
	var userID string
	var urls []string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest web pages into a user's knowledge base",
		Long: `Fetch web pages, extract their readable content, and store it in the
user's knowledge base.

Pages that yield no extractable content (unreachable, non-HTML, boilerplate
only) are skipped with a message; the rest of the batch continues.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  EMBEDDING_PROVIDER   Embedding backend: ollama, openai, azure (default: ollama)
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  kompow ingest --user alice@example.com --url https://go.dev/blog/error-handling
  kompow ingest --user alice@example.com --url https://a.example --url https://b.example`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if len(urls) == 0 {
				return fmt.Errorf("ingest: at least one --url is required")
			}

			a, err := buildApp(ctx, log, false)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer a.close()

			res, err := a.svc.IngestURLs(ctx, userID, urls, func(msg string) {
				fmt.Println(msg)
			})
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			fmt.Printf("Ingested %d page(s) (%d chunk(s)), skipped %d\n",
				res.Ingested, res.Chunks, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose knowledge base receives the content")
	cmd.Flags().StringArrayVar(&urls, "url", nil, "Web page URL to ingest (repeatable)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
