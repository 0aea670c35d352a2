package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List indexed documents",
	Long:  `Lists every document in the knowledge base with its type, size and chunk count.`,
	RunE:  runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	docs, err := knowledgeService.Documents(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents failed: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed. Run 'askme load [folder]' first.")
		return nil
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("Indexed documents (%d):", len(docs))))
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].FileName)
		cmd.Println(mutedStyle.Render(fmt.Sprintf(
			"    %s  %s  %d chunks  modified %s",
			docs[i].FileType,
			formatSize(docs[i].FileSizeBytes),
			docs[i].ChunkCount,
			docs[i].LastModified.Format("2006-01-02 15:04"),
		)))
	}

	return nil
}

// formatSize renders a byte count in human-readable form.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
