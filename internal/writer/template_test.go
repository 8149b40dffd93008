package writer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robwestz/bacowr/internal/domain"
	"github.com/robwestz/bacowr/internal/writer"
)

func templateJob() *domain.JobInput {
	return &domain.JobInput{
		ID:              "job-tpl",
		PublisherDomain: "techblog.example.com",
		TargetURL:       "https://shop.example.com/laptops",
		AnchorText:      "compare the options",
		Provider:        "template",
		Strategy:        domain.StrategyAuto,
		CountryCode:     "us",
		MinWordCount:    300,
	}
}

func templatePreflight() *domain.PreflightResult {
	return &domain.PreflightResult{
		Target: domain.TargetProfile{
			URL:      "https://shop.example.com/laptops",
			Title:    "best laptops for developers",
			Topic:    "laptops",
			Vertical: "finance",
		},
		Publisher: domain.PublisherProfile{
			Domain: "techblog.example.com",
			Tone:   "editorial",
		},
		Anchor: domain.AnchorProfile{Text: "compare the options"},
		Research: domain.IntentResearch{
			PrimaryIntent:     "commercial",
			RelatedTerms:      []string{"battery life", "screen size", "keyboard", "processor", "memory", "storage"},
			RequiredSubtopics: []string{"performance", "portability", "budget planning"},
		},
		Bridge: domain.BridgeStrong,
	}
}

func TestTemplateWriter_Generate(t *testing.T) {
	w := writer.NewTemplateWriter()
	job := templateJob()
	pf := templatePreflight()

	draft, err := w.Generate(context.Background(), job, pf, nil)
	require.NoError(t, err)

	assert.Equal(t, "template", draft.Provider)
	assert.Equal(t, domain.HashContent(draft.Text), draft.ContentHash)

	// The single backlink uses the exact anchor text and target URL.
	assert.Contains(t, draft.Text, "[compare the options](https://shop.example.com/laptops)")
	assert.Equal(t, 1, strings.Count(draft.Text, job.TargetURL))

	// Every researched subtopic gets its own section.
	for _, subtopic := range pf.Research.RequiredSubtopics {
		assert.Contains(t, strings.ToLower(draft.Text), "## "+subtopic)
	}

	// Finance vertical carries its disclaimer.
	assert.Contains(t, draft.Text, "financial advice")

	words := len(strings.Fields(draft.Text))
	assert.GreaterOrEqual(t, words, job.MinWordCount)
}

func TestTemplateWriter_Deterministic(t *testing.T) {
	w := writer.NewTemplateWriter()
	job := templateJob()
	pf := templatePreflight()

	first, err := w.Generate(context.Background(), job, pf, nil)
	require.NoError(t, err)
	second, err := w.Generate(context.Background(), job, pf, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.ContentHash, second.ContentHash)
}

func TestTemplateWriter_GuidanceChangesOutput(t *testing.T) {
	w := writer.NewTemplateWriter()
	job := templateJob()
	pf := templatePreflight()

	plain, err := w.Generate(context.Background(), job, pf, nil)
	require.NoError(t, err)

	guidance := &writer.Guidance{
		Issues: []domain.Issue{
			{Criterion: domain.CriterionFit, Severity: domain.SeverityCritical, Message: "tone mismatch"},
		},
	}
	revised, err := w.Generate(context.Background(), job, pf, guidance)
	require.NoError(t, err)

	assert.NotEqual(t, plain.ContentHash, revised.ContentHash)
	assert.Contains(t, revised.Text, "Revision Notes")
	assert.Contains(t, revised.Text, "fit")
}

func TestTemplateWriter_FewSubtopicsStillMultipleSections(t *testing.T) {
	w := writer.NewTemplateWriter()
	pf := templatePreflight()
	pf.Research.RequiredSubtopics = []string{"performance"}

	draft, err := w.Generate(context.Background(), templateJob(), pf, nil)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, strings.Count(draft.Text, "\n## "), 2)
}
