// Package preflight defines the contract to the external profiling subsystem
// and an HTTP sidecar client implementing it.
package preflight

import (
	"context"

	"github.com/robwestz/bacowr/internal/domain"
)

// Collaborator is the engine's view of the profiling subsystem. Profile is a
// blocking call with no visible side effects; any retry policy is internal to
// the implementation. Timeouts are enforced at this boundary and surface as
// ordinary errors.
type Collaborator interface {
	Profile(ctx context.Context, job *domain.JobInput) (*domain.PreflightResult, error)
}
