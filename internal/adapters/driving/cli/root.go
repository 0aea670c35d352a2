// Package cli implements the askme command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askme-cli/internal/adapters/driven/config/file"
	hashembed "github.com/custodia-labs/askme-cli/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/custodia-labs/askme-cli/internal/adapters/driven/embedding/ollama"
	ollamallm "github.com/custodia-labs/askme-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/askme-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/askme-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/askme-cli/internal/cache"
	"github.com/custodia-labs/askme-cli/internal/chunker"
	"github.com/custodia-labs/askme-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askme-cli/internal/core/services"
	"github.com/custodia-labs/askme-cli/internal/logger"
)

// version is set by Execute from the build.
var version = "dev"

// Services wired by initServices. Tests may set these directly before
// executing a command; initServices then leaves them alone.
var (
	answerService    driving.AnswerService
	knowledgeService driving.KnowledgeService
	retrieverService driving.Retriever

	documentStore driven.DocumentStore
	docSource     driven.DocumentSource
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "askme",
	Short: "Ask questions about your documents",
	Long: `askme is a local knowledge-base assistant. Load a folder of
documents, then ask questions answered from their content using
retrieval-augmented generation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	defer closeServices()
	return rootCmd.Execute()
}

// initServices builds the service graph from configuration. It is a
// no-op when services are already present.
func initServices() error {
	if answerService != nil {
		return nil
	}

	cfgStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settings := file.LoadSettings(cfgStore)

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		logger.Warn("Prompt store unavailable: %v", err)
	} else {
		settings.Context.SystemPrompt = promptStore.SystemPrompt()
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	documentStore = store

	var embedder driven.EmbeddingService
	switch settings.EmbeddingProvider {
	case "ollama":
		embedder = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.OllamaBaseURL,
			Model:   settings.EmbeddingModel,
		})
	default:
		embedder = hashembed.NewEmbedder()
	}

	llm := ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.OllamaBaseURL,
		Model:   settings.LLMModel,
	})

	source := filesystem.New()
	docSource = source

	knowledge := services.NewKnowledge(store, source, embedder, chunker.New(), cache.New())
	retrieval := services.NewRetrieval(store, embedder, services.NewExpander())
	assembler := services.NewAssembler(settings.Context)
	answer := services.NewAnswer(knowledge, retrieval, assembler, llm, memory.NewConversationStore())

	knowledgeService = knowledge
	retrieverService = retrieval
	answerService = answer

	return nil
}

// closeServices releases resources held by the service graph.
func closeServices() {
	if documentStore != nil {
		if err := documentStore.Close(); err != nil {
			logger.Warn("Closing document store: %v", err)
		}
	}
	if closer, ok := docSource.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("Closing document source: %v", err)
		}
	}
}
