package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kompow/kompow-go/internal/logging"
)

// NewTopicsCmd constructs the `kompow topics` command, which lists the
// distinct flashcard topics in a user's knowledge base.
func NewTopicsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List a user's flashcard topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			a, err := buildApp(ctx, log, false)
			if err != nil {
				return fmt.Errorf("topics: %w", err)
			}
			defer a.close()

			topics, err := a.svc.FlashcardTopics(ctx, userID)
			if err != nil {
				return fmt.Errorf("topics: %w", err)
			}

			if len(topics) == 0 {
				fmt.Println("No flashcard topics found.")
				return nil
			}
			for _, t := range topics {
				fmt.Println(t)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose topics to list")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
