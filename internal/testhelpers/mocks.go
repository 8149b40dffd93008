// Package testhelpers provides shared test utilities for the engine: mock
// preflight and writer collaborators with scriptable behavior.
package testhelpers

import (
	"context"
	"errors"
	"sync"

	"github.com/robwestz/bacowr/internal/domain"
	"github.com/robwestz/bacowr/internal/writer"
)

// ErrCollaboratorDown simulates an unreachable sidecar.
var ErrCollaboratorDown = errors.New("collaborator unavailable")

// MockPreflight implements preflight.Collaborator for testing.
type MockPreflight struct {
	mu     sync.Mutex
	Result *domain.PreflightResult
	Err    error
	calls  int
}

// NewMockPreflight creates a mock returning the given result.
func NewMockPreflight(result *domain.PreflightResult) *MockPreflight {
	return &MockPreflight{Result: result}
}

// Profile returns the scripted result or error.
func (m *MockPreflight) Profile(_ context.Context, _ *domain.JobInput) (*domain.PreflightResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Calls returns how many times Profile was invoked.
func (m *MockPreflight) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockWriter implements writer.Collaborator for testing. Texts are returned
// in order per call; the last entry repeats once exhausted, which makes
// identical-output loop scenarios a one-liner.
type MockWriter struct {
	mu       sync.Mutex
	Provider string
	Texts    []string
	Err      error
	calls    int
	guidance []*writer.Guidance
}

// NewMockWriter creates a mock producing the given draft texts in order.
func NewMockWriter(provider string, texts ...string) *MockWriter {
	return &MockWriter{Provider: provider, Texts: texts}
}

// Name returns the backend identifier.
func (m *MockWriter) Name() string {
	return m.Provider
}

// Generate returns the next scripted draft.
func (m *MockWriter) Generate(_ context.Context, _ *domain.JobInput, _ *domain.PreflightResult, guidance *writer.Guidance) (*domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guidance = append(m.guidance, guidance)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Texts) == 0 {
		return nil, errors.New("mock writer has no scripted drafts")
	}
	idx := m.calls
	if idx >= len(m.Texts) {
		idx = len(m.Texts) - 1
	}
	m.calls++
	return domain.NewDraft(m.Texts[idx], m.Provider, "mock-model", 100, 500, 0), nil
}

// Calls returns how many times Generate was invoked.
func (m *MockWriter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// GuidanceAt returns the guidance passed on the nth Generate call, nil when
// out of range.
func (m *MockWriter) GuidanceAt(n int) *writer.Guidance {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || n >= len(m.guidance) {
		return nil
	}
	return m.guidance[n]
}
