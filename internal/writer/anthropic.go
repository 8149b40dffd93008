package writer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/robwestz/bacowr/internal/domain"
)

const (
	anthropicProviderName    = "anthropic"
	defaultAnthropicModel    = "claude-sonnet-4-5"
	defaultAnthropicMaxToken = 8192
)

const anthropicSystemPrompt = "You are a senior SEO content writer. Write a complete article in " +
	"markdown with H2 sections, embedding exactly one link with the given anchor text. " +
	"Cite at least one authoritative source. Return only the article body."

// AnthropicWriter generates drafts through the Anthropic Messages API.
type AnthropicWriter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// AnthropicConfig configures the Anthropic backend.
type AnthropicConfig struct {
	APIKey    string `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// NewAnthropicWriter creates an Anthropic-backed writer.
func NewAnthropicWriter(cfg AnthropicConfig) *AnthropicWriter {
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultAnthropicMaxToken
	}
	return &AnthropicWriter{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Name returns the backend identifier.
func (w *AnthropicWriter) Name() string {
	return anthropicProviderName
}

// Generate prompts the model with the job context and wraps the completion as
// a sealed Draft.
func (w *AnthropicWriter) Generate(ctx context.Context, job *domain.JobInput, pf *domain.PreflightResult, guidance *Guidance) (*domain.Draft, error) {
	start := time.Now()

	msg, err := w.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(w.model),
		MaxTokens: w.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: anthropicSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(job, pf, guidance))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, fmt.Errorf("anthropic returned empty draft")
	}

	return domain.NewDraft(text, anthropicProviderName, w.model,
		msg.Usage.InputTokens, msg.Usage.OutputTokens, time.Since(start)), nil
}

// buildPrompt renders the job context, preflight findings, and any corrective
// guidance into a single generation prompt.
func buildPrompt(job *domain.JobInput, pf *domain.PreflightResult, guidance *Guidance) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Publisher: %s (tone: %s)\n", job.PublisherDomain, pf.Publisher.Tone)
	fmt.Fprintf(&sb, "Target URL: %s\n", job.TargetURL)
	fmt.Fprintf(&sb, "Anchor text: %q\n", job.AnchorText)
	fmt.Fprintf(&sb, "Bridge type: %s\n", pf.Bridge)
	fmt.Fprintf(&sb, "Minimum word count: %d\n", job.MinWordCount)

	if len(pf.Research.RequiredSubtopics) > 0 {
		fmt.Fprintf(&sb, "Required subtopics: %s\n", strings.Join(pf.Research.RequiredSubtopics, ", "))
	}
	if len(pf.Research.RelatedTerms) > 0 {
		fmt.Fprintf(&sb, "Place these related terms near the anchor link: %s\n",
			strings.Join(pf.Research.RelatedTerms, ", "))
	}
	if pf.Target.Vertical != "" {
		fmt.Fprintf(&sb, "Vertical: %s (include the required disclaimer)\n", pf.Target.Vertical)
	}

	if guidance != nil && len(guidance.Issues) > 0 {
		sb.WriteString("\nThe previous draft was rejected. Fix these issues:\n")
		for _, issue := range guidance.Issues {
			fmt.Fprintf(&sb, "- [%s] %s\n", issue.Criterion, issue.Message)
		}
		for _, rec := range guidance.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", rec)
		}
	}

	return sb.String()
}
