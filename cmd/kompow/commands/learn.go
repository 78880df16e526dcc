package commands

import (
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/kompow/kompow-go/internal/logging"
	"github.com/kompow/kompow-go/internal/tracing"
)

// NewLearnCmd constructs the `kompow learn` command, which runs the full
// learning pipeline for one user: profile analysis, topic research, and
// flashcard generation.
func NewLearnCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Run the learning pipeline for a user",
		Long: `Run the full learning pipeline for one user.

The pipeline reads the user's knowledge base, derives a profile of their
interests, researches the topics it finds (with web search), generates
flashcards from the research, and stores them back into the knowledge base.

A run that stops early (empty knowledge base, thin research, unparseable
flashcards) reports the reason and exits successfully; nothing is stored.

Examples:
  kompow learn --user alice@example.com
  MODEL_PROVIDER=azure kompow learn --user alice@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			// Langfuse tracing is opt-in and silent when keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			}

			a, err := buildApp(ctx, log, true)
			if err != nil {
				return fmt.Errorf("learn: %w", err)
			}
			defer a.close()

			res, err := a.svc.RunPipeline(ctx, userID)
			if err != nil {
				return fmt.Errorf("learn: %w", err)
			}

			if !res.Completed() {
				fmt.Printf("Pipeline stopped early: %s\n", res.SkipReason)
				return nil
			}
			fmt.Printf("Stored %d flashcards under topic %q\n", res.Flashcards, res.Topic)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose knowledge base to learn from")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
