package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kompow/kompow-go/internal/logging"
)

// NewFlashcardsCmd constructs the `kompow flashcards` command, which lists a
// user's stored flashcard sets.
func NewFlashcardsCmd() *cobra.Command {
	var userID string
	var topic string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "flashcards",
		Short: "List a user's flashcard sets",
		Long: `List the flashcard sets stored in the user's knowledge base, newest
first. A --topic filter selects exact topic matches.

Examples:
  kompow flashcards --user alice@example.com
  kompow flashcards --user alice@example.com --topic "Consensus" --limit 3
  kompow flashcards --user alice@example.com --json | jq '.[].cards'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			a, err := buildApp(ctx, log, false)
			if err != nil {
				return fmt.Errorf("flashcards: %w", err)
			}
			defer a.close()

			sets, err := a.svc.FlashcardSets(ctx, userID, topic, limit)
			if err != nil {
				return fmt.Errorf("flashcards: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(sets)
			}

			if len(sets) == 0 {
				fmt.Println("No flashcard sets found.")
				return nil
			}
			for _, set := range sets {
				fmt.Printf("%s (%s, %d cards)\n", set.Topic, set.CreatedAt, len(set.Cards))
				for i, c := range set.Cards {
					fmt.Printf("  %d. Q: %s\n     A: %s\n", i+1, c.Question, c.Answer)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose flashcards to list")
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Only show sets with this exact topic")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of sets to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of formatted text")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
