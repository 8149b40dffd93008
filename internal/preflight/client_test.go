package preflight_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robwestz/bacowr/internal/domain"
	"github.com/robwestz/bacowr/internal/preflight"
)

func testJob() *domain.JobInput {
	return &domain.JobInput{
		ID:              "job-1",
		PublisherDomain: "techblog.example.com",
		TargetURL:       "https://shop.example.com/laptops",
		AnchorText:      "compare the options",
		Provider:        "template",
		Strategy:        domain.StrategyAuto,
		CountryCode:     "us",
		MinWordCount:    900,
	}
}

func TestClient_Profile_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/profile" {
			t.Errorf("path = %s, want /profile", r.URL.Path)
		}

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "techblog.example.com", req["publisher_domain"])
		assert.Equal(t, "compare the options", req["anchor_text"])

		result := domain.PreflightResult{
			Target: domain.TargetProfile{
				URL:   "https://shop.example.com/laptops",
				Topic: "laptops",
			},
			Publisher: domain.PublisherProfile{Domain: "techblog.example.com"},
			Bridge:    domain.BridgeStrong,
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(&result))
	}))
	defer server.Close()

	client := preflight.NewClient(server.URL, time.Second)
	result, err := client.Profile(context.Background(), testJob())

	require.NoError(t, err)
	assert.Equal(t, "laptops", result.Target.Topic)
	assert.Equal(t, domain.BridgeStrong, result.Bridge)
}

func TestClient_Profile_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := preflight.NewClient(server.URL, time.Second)
	_, err := client.Profile(context.Background(), testJob())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Profile_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := preflight.NewClient(server.URL, time.Second)
	_, err := client.Profile(ctx, testJob())

	require.Error(t, err)
}

func TestClient_Health_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s, want /health", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"2.3.0"}`))
	}))
	defer server.Close()

	client := preflight.NewClient(server.URL, time.Second)
	latencyMs, version, err := client.Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2.3.0", version)
	assert.GreaterOrEqual(t, latencyMs, int64(0))
}

func TestClient_Health_Unreachable(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := preflight.NewClient(server.URL, time.Second)
	_, _, err := client.Health(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, preflight.ErrUnavailable))
}

func TestClient_Health_UnhealthyStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := preflight.NewClient(server.URL, time.Second)
	_, _, err := client.Health(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, preflight.ErrUnavailable))
}
