package services_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/bookscope/bookscope/internal/models"
	"github.com/bookscope/bookscope/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCompleter struct {
	body string
	err  error
}

func (c *staticCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return c.body, c.err
}

func TestReportGeneratorWritesPDF(t *testing.T) {
	gen := services.NewReportGenerator(&staticCompleter{body: "Scholarly prose about the work."}, t.TempDir())

	path, err := gen.Generate(context.Background(), "Beloved", "Toni Morrison", models.PlanBasic)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	assert.True(t, strings.HasSuffix(path, ".pdf"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestReportGeneratorFallsBackWithoutLLM(t *testing.T) {
	gen := services.NewReportGenerator(nil, t.TempDir())

	path, err := gen.Generate(context.Background(), "Middlemarch", "George Eliot", models.PlanPremium)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestReportGeneratorRejectsInvalidPlan(t *testing.T) {
	gen := services.NewReportGenerator(nil, t.TempDir())

	_, err := gen.Generate(context.Background(), "Any", "One", models.PlanType("gold"))
	require.Error(t, err)
}
