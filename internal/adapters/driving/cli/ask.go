package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askConversationID string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the loaded documents",
	Long: `Answers a question using retrieval-augmented generation over the
knowledge base. When no relevant content is found, related topics from
the indexed documents are suggested instead.

Use --conversation to thread follow-up questions: exchanges with the
same conversation ID share history.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askConversationID, "conversation", "c", "", "conversation ID for multi-turn context")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer, err := answerService.Ask(cmd.Context(), args[0], askConversationID)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println()
	if answer.Source == "system" {
		cmd.Println(warningStyle.Render(answer.Text))
	} else {
		cmd.Println(answerStyle.Render(answer.Text))
	}

	if len(answer.SourceDocuments) > 0 {
		cmd.Println()
		cmd.Println(mutedStyle.Render("Sources: " + strings.Join(answer.SourceDocuments, ", ")))
	}

	if len(answer.Suggestions) > 0 {
		cmd.Println()
		cmd.Println(titleStyle.Render("You could try asking about:"))
		for _, s := range answer.Suggestions {
			cmd.Printf("  - %s\n", s)
		}
	}

	return nil
}
