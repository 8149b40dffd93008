// Package writer defines the contract to the text-generation subsystem and
// the backends implementing it. The engine depends only on the Collaborator
// interface; concrete backends are selected by the Factory at
// job-construction time.
package writer

import (
	"context"
	"fmt"
	"sort"

	"github.com/robwestz/bacowr/internal/domain"
)

// Guidance carries corrective feedback from a failed quality evaluation.
// It is populated only during a rescue with full regeneration.
type Guidance struct {
	Issues          []domain.Issue `json:"issues"`
	Recommendations []string       `json:"recommendations"`
}

// GuidanceFromReport extracts corrective guidance from a QC report.
func GuidanceFromReport(report *domain.QCReport) *Guidance {
	if report == nil {
		return nil
	}
	return &Guidance{
		Issues:          report.Issues,
		Recommendations: report.Recommendations,
	}
}

// Collaborator is the engine's view of a text-generation backend. Generate is
// a blocking call; guidance is nil on the first pass.
type Collaborator interface {
	// Name returns the backend identifier used for provider selection.
	Name() string

	Generate(ctx context.Context, job *domain.JobInput, pf *domain.PreflightResult, guidance *Guidance) (*domain.Draft, error)
}

// Factory selects a writer backend per job based on the job's provider field.
// Backends are registered once at startup; the engine never inspects provider
// strings itself.
type Factory struct {
	backends map[string]Collaborator
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{backends: make(map[string]Collaborator)}
}

// Register adds a backend under its own name. Later registrations with the
// same name replace earlier ones.
func (f *Factory) Register(c Collaborator) {
	f.backends[c.Name()] = c
}

// For returns the backend for the job's provider.
func (f *Factory) For(job *domain.JobInput) (Collaborator, error) {
	c, ok := f.backends[job.Provider]
	if !ok {
		return nil, fmt.Errorf("no writer backend registered for provider %q (have %v)", job.Provider, f.Providers())
	}
	return c, nil
}

// Providers lists registered backend names, sorted.
func (f *Factory) Providers() []string {
	names := make([]string, 0, len(f.backends))
	for name := range f.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
