package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Finds the document snippets most relevant to a query using
semantic similarity over the stored embeddings.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	matches, err := knowledgeService.FindRelevantChunks(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, matches)
	}

	return outputSearchText(cmd, matches)
}

func outputSearchJSON(cmd *cobra.Command, matches []domain.SnippetMatch) error {
	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, matches []domain.SnippetMatch) error {
	if len(matches) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println(titleStyle.Render("Results:"))
	cmd.Println()
	for i := range matches {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, matches[i].FileName, matches[i].Score)
		cmd.Println(mutedStyle.Render("      " + matches[i].FilePath))
		cmd.Printf("      %s\n", snippetPreview(matches[i].Text))
		cmd.Println()
	}

	return nil
}

// snippetPreview truncates snippet text for single-line display.
func snippetPreview(text string) string {
	const maxPreview = 160

	flat := make([]rune, 0, len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		flat = append(flat, r)
	}

	if len(flat) <= maxPreview {
		return string(flat)
	}
	return string(flat[:maxPreview]) + "..."
}
