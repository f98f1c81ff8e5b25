package health

import (
	"context"
	"time"

	corehealth "github.com/yamgooo/sri-client-go/internal/core/health"
)

// Metadata contains immutable metadata about the running service.
type Metadata struct {
	Service     string
	Version     string
	Environment string
}

// Check probes a single dependency. A nil error means the dependency is
// reachable.
type Check func(ctx context.Context) error

// Service exposes health-check use cases to adapters.
type Service struct {
	meta      Metadata
	startedAt time.Time
	checks    map[string]Check
}

func NewService(meta Metadata) *Service {
	return &Service{
		meta:      meta,
		startedAt: time.Now().UTC(),
		checks:    make(map[string]Check),
	}
}

// RegisterCheck adds a named dependency probe. Registration happens during
// wiring, before the server starts serving requests.
func (s *Service) RegisterCheck(name string, check Check) {
	s.checks[name] = check
}

// Status returns the current availability snapshot. A failing dependency is
// reported in the checks map but does not mark the service itself as down;
// the gateway keeps working against the SRI without its optional pieces.
func (s *Service) Status(ctx context.Context) corehealth.Status {
	uptime := time.Since(s.startedAt)

	var checks map[string]string
	if len(s.checks) > 0 {
		checks = make(map[string]string, len(s.checks))
		for name, check := range s.checks {
			if err := check(ctx); err != nil {
				checks[name] = "DOWN: " + err.Error()
			} else {
				checks[name] = "UP"
			}
		}
	}

	return corehealth.Status{
		Service:     s.meta.Service,
		Version:     s.meta.Version,
		Environment: s.meta.Environment,
		Status:      "UP",
		StartedAt:   s.startedAt,
		Uptime:      uptime.String(),
		UptimeSecs:  int64(uptime.Seconds()),
		Checks:      checks,
	}
}
