package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

func TestValidateCmd_Use(t *testing.T) {
	assert.Equal(t, "validate", validateCmd.Use)
}

func TestValidateCmd_PrintsReport(t *testing.T) {
	cleanup := setupTestServices(
		&mockAnswerService{},
		&mockKnowledgeService{},
		&mockRetriever{
			report: &domain.ValidationReport{
				TotalEmbeddings:   42,
				TestedEmbeddings:  42,
				AverageSimilarity: 0.412,
				Results:           []string{"'product information': max 0.52"},
				Valid:             true,
			},
		},
	)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"validate"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Total embeddings:  42")
	assert.Contains(t, buf.String(), "0.412")
	assert.Contains(t, buf.String(), "product information")
	assert.Contains(t, buf.String(), "Index is valid.")
}

func TestValidateCmd_ReportsProblems(t *testing.T) {
	cleanup := setupTestServices(
		&mockAnswerService{},
		&mockKnowledgeService{},
		&mockRetriever{
			report: &domain.ValidationReport{
				TotalEmbeddings: 0,
				Errors:          []string{"no embeddings stored"},
				Valid:           false,
			},
		},
	)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"validate"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "no embeddings stored")
	assert.Contains(t, buf.String(), "Index failed validation.")
}
