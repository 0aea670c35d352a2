package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the embedding index",
	Long: `Runs a battery of test queries against the stored embeddings and
reports per-query similarity with an overall pass/fail verdict. Useful
as a smoke test after loading a folder.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	report, err := retrieverService.ValidateEmbeddings(cmd.Context(), nil)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	cmd.Println(titleStyle.Render("Embedding validation"))
	cmd.Printf("  Total embeddings:  %d\n", report.TotalEmbeddings)
	cmd.Printf("  Tested embeddings: %d\n", report.TestedEmbeddings)
	cmd.Printf("  Average similarity: %.3f\n", report.AverageSimilarity)
	cmd.Println()

	for _, line := range report.Results {
		cmd.Printf("  %s\n", line)
	}

	if len(report.Errors) > 0 {
		cmd.Println()
		cmd.Println(errorStyle.Render("Problems:"))
		for _, e := range report.Errors {
			cmd.Printf("  %s\n", e)
		}
	}

	cmd.Println()
	if report.Valid {
		cmd.Println(successStyle.Render("Index is valid."))
		return nil
	}

	cmd.Println(errorStyle.Render("Index failed validation."))
	return nil
}
