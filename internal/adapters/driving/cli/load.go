package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askme-cli/internal/connectors/filesystem"
)

var loadCmd = &cobra.Command{
	Use:   "load [folder]",
	Short: "Load a folder into the knowledge base",
	Long: `Rebuilds the knowledge base from a folder of documents.
The index is cleared and every supported file is chunked and embedded.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	path, err := filesystem.ResolvePath(args[0])
	if err != nil {
		return fmt.Errorf("resolving folder path: %w", err)
	}

	cmd.Printf("Loading documents from %s...\n", path)

	result, err := answerService.LoadFolder(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	cmd.Println(successStyle.Render(fmt.Sprintf(
		"Indexed %d files (%d skipped, %d failed) in %s",
		result.FilesIndexed, result.FilesSkipped, result.FilesFailed,
		result.Duration.Round(time.Millisecond),
	)))

	return nil
}
