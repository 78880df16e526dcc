package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/kompow/kompow-go/internal/logging"
	"github.com/kompow/kompow-go/internal/server"
	"github.com/kompow/kompow-go/internal/tracing"
)

// NewServeCmd constructs the `kompow serve` command, which starts the HTTP
// API server.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the kompow HTTP API server",
		Long: `Start the kompow HTTP server on localhost.

The server exposes the learning service as a REST API: pipeline runs,
document and URL ingestion, flashcard retrieval, and run history, plus
health, readiness, and Prometheus metrics endpoints.

The server starts even when the embedder or chat model is unconfigured;
affected endpoints then report their degraded state per request.

Examples:
  kompow serve
  kompow serve --port 9090
  MODEL_PROVIDER=azure kompow serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			a, err := buildApp(ctx, log, false)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer a.close()

			var pingers []server.Pinger
			pingers = append(pingers, server.NewQdrantPinger(a.qdr.Client()))
			if a.emb != nil {
				pingers = append(pingers, server.NewEmbedderPinger(a.emb))
			}
			if a.model != nil {
				pingers = append(pingers, server.NewLLMPinger(a.model, getEnvOrDefault("MODEL_PROVIDER", "ollama")))
			}

			if !cmd.Flags().Changed("host") {
				host = getEnvOrDefault("KOMPOW_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = getEnvInt("KOMPOW_PORT", port)
			}

			srv, err := server.New(a.svc, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("KOMPOW_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
