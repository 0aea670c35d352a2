package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askme-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Watch a folder and keep the index up to date",
	Long: `Watches a folder for changes and incrementally updates the
knowledge base: new and modified files are re-embedded, deleted files
are removed from the index. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil || docSource == nil {
		return errors.New("knowledge service not configured")
	}

	path, err := filesystem.ResolvePath(args[0])
	if err != nil {
		return fmt.Errorf("resolving folder path: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, err := docSource.Watch(ctx, path)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)...\n", path)

	for event := range events {
		cmd.Printf("  %s %s\n", changeLabel(event.Type), event.Path)
		if err := knowledgeService.HandleFileEvent(ctx, event); err != nil {
			logger.Warn("Handling %s: %v", event.Path, err)
			cmd.Println(errorStyle.Render(fmt.Sprintf("    failed: %v", err)))
		}
	}

	cmd.Println("Watcher stopped.")
	return nil
}

func changeLabel(t domain.FileChangeType) string {
	switch t {
	case domain.FileAdded:
		return "added"
	case domain.FileChanged:
		return "changed"
	case domain.FileDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}
