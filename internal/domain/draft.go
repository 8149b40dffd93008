package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Draft is one generated article plus its generation metadata. A job holds at
// most two drafts over its lifetime: the original and, if rescued, exactly
// one regenerated draft. Drafts are immutable once produced.
type Draft struct {
	Text string `json:"text"` // markdown article body

	Provider     string        `json:"provider"`
	Model        string        `json:"model,omitempty"`
	InputTokens  int64         `json:"input_tokens"`
	OutputTokens int64         `json:"output_tokens"`
	Duration     time.Duration `json:"duration_ms"`

	ContentHash string    `json:"content_hash"` // sha256 hex, for loop detection
	GeneratedAt time.Time `json:"generated_at"`
}

// NewDraft builds a Draft and seals it with its content hash.
func NewDraft(text, provider, model string, inputTokens, outputTokens int64, duration time.Duration) *Draft {
	return &Draft{
		Text:         text,
		Provider:     provider,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Duration:     duration,
		ContentHash:  HashContent(text),
		GeneratedAt:  time.Now(),
	}
}

// WithText returns a copy of the draft carrying new text and a recomputed
// hash. Used by the AutoFix engine, which transforms text but keeps the
// generation metadata of the draft it started from.
func (d *Draft) WithText(text string) *Draft {
	fixed := *d
	fixed.Text = text
	fixed.ContentHash = HashContent(text)
	fixed.GeneratedAt = time.Now()
	return &fixed
}

// HashContent returns the canonical content hash used for loop detection.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
