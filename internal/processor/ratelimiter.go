package processor

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/robwestz/bacowr/internal/logger"
)

// AdmissionGate bounds collaborator calls per second across all concurrent
// jobs. It is the only cross-job shared resource: orchestrators check it
// before every preflight or writer call and block until a slot frees or the
// context is done.
type AdmissionGate struct {
	limiter *rate.Limiter
	log     logger.Logger
}

// NewAdmissionGate creates a gate allowing rps calls per second with the
// given burst.
func NewAdmissionGate(rps, burst int, log logger.Logger) *AdmissionGate {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = rps
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &AdmissionGate{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     log,
	}
}

// Admit blocks until the rate limit allows one collaborator call.
func (g *AdmissionGate) Admit(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		g.log.Warn("admission gate wait failed", logger.Error(err))
		return err
	}
	return nil
}

// Allow reports whether a call would be admitted right now, without waiting.
func (g *AdmissionGate) Allow() bool {
	return g.limiter.Allow()
}

// SetLimit updates the admitted calls per second.
func (g *AdmissionGate) SetLimit(rps int) {
	g.limiter.SetLimit(rate.Limit(rps))
	g.log.Info("admission rate updated", logger.Int("rps", rps))
}

// SetBurst updates the burst size.
func (g *AdmissionGate) SetBurst(burst int) {
	g.limiter.SetBurst(burst)
	g.log.Info("admission burst updated", logger.Int("burst", burst))
}
