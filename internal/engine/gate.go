package engine

import "context"

// Gate is the admission check run before each collaborator call. The batch
// layer owns the real implementation; it may block until a slot frees or the
// context is done.
type Gate interface {
	Admit(ctx context.Context) error
}

type nopGate struct{}

func (nopGate) Admit(ctx context.Context) error {
	return ctx.Err()
}

// NopGate admits every call immediately. Used when no batch layer is present.
func NopGate() Gate {
	return nopGate{}
}
