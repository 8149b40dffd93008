package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/robwestz/bacowr/internal/domain"
)

const defaultHTTPTimeout = 120 * time.Second

// HTTPWriter generates drafts via a generation sidecar exposing POST
// /generate.
type HTTPWriter struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

type generateRequest struct {
	Job       *domain.JobInput        `json:"job"`
	Preflight *domain.PreflightResult `json:"preflight"`
	Guidance  *Guidance               `json:"guidance,omitempty"`
}

type generateResponse struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// NewHTTPWriter creates a sidecar-backed writer registered under name.
func NewHTTPWriter(name, baseURL string, timeout time.Duration) *HTTPWriter {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPWriter{
		name:       name,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (w *HTTPWriter) Name() string {
	return w.name
}

// Generate sends the job context to the sidecar and wraps the response as a
// sealed Draft.
func (w *HTTPWriter) Generate(ctx context.Context, job *domain.JobInput, pf *domain.PreflightResult, guidance *Guidance) (*domain.Draft, error) {
	start := time.Now()

	body, err := json.Marshal(&generateRequest{Job: job, Preflight: pf, Guidance: guidance})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation service returned %d", resp.StatusCode)
	}

	var gen generateResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&gen); decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if gen.Text == "" {
		return nil, fmt.Errorf("generation service returned empty draft")
	}

	return domain.NewDraft(gen.Text, w.name, gen.Model, gen.InputTokens, gen.OutputTokens, time.Since(start)), nil
}
