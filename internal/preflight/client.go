package preflight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robwestz/bacowr/internal/domain"
)

const defaultTimeout = 30 * time.Second

// ErrUnavailable indicates the profiling service is unreachable.
var ErrUnavailable = errors.New("preflight service unavailable")

// Client is an HTTP client for the profiling sidecar.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// profileRequest is the request body for POST /profile.
type profileRequest struct {
	PublisherDomain string `json:"publisher_domain"`
	TargetURL       string `json:"target_url"`
	AnchorText      string `json:"anchor_text"`
	CountryCode     string `json:"country_code"`
	Strategy        string `json:"strategy"`
}

// healthResponse is the JSON shape returned by GET /health.
type healthResponse struct {
	Version string `json:"version"`
}

// NewClient creates a profiling client. A zero timeout falls back to the
// default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Profile sends a profiling request to the sidecar and decodes the structured
// result.
func (c *Client) Profile(ctx context.Context, job *domain.JobInput) (*domain.PreflightResult, error) {
	body, err := json.Marshal(&profileRequest{
		PublisherDomain: job.PublisherDomain,
		TargetURL:       job.TargetURL,
		AnchorText:      job.AnchorText,
		CountryCode:     job.CountryCode,
		Strategy:        job.Strategy,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/profile", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profiling service returned %d", resp.StatusCode)
	}

	var result domain.PreflightResult
	if decodeErr := json.NewDecoder(resp.Body).Decode(&result); decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	return &result, nil
}

// Health calls GET /health and returns latency and the service version.
func (c *Client) Health(ctx context.Context) (latencyMs int64, version string, err error) {
	start := time.Now()

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if reqErr != nil {
		return 0, "", fmt.Errorf("create request: %w", reqErr)
	}

	resp, doErr := c.httpClient.Do(httpReq)
	latencyMs = time.Since(start).Milliseconds()
	if doErr != nil {
		return latencyMs, "", fmt.Errorf("%w: %w", ErrUnavailable, doErr)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return latencyMs, "", fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}

	var health healthResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&health); decodeErr == nil {
		version = health.Version
	}
	return latencyMs, version, nil
}
