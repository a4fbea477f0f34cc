package services

import (
	"context"
	"errors"
	"time"

	"github.com/vitrinezap/api/internal/repositories"
)

// SystemServiceDeps bundles collaborators for the system service.
type SystemServiceDeps struct {
	Health      repositories.HealthRepository
	Version     string
	Environment string
	StartedAt   time.Time
	Clock       func() time.Time
}

type systemService struct {
	health      repositories.HealthRepository
	version     string
	environment string
	startedAt   time.Time
	clock       func() time.Time
}

// NewSystemService constructs a SystemService validating required dependencies.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.Health == nil {
		return nil, errors.New("system service: health repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	startedAt := deps.StartedAt
	if startedAt.IsZero() {
		startedAt = clock().UTC()
	}

	return &systemService{
		health:      deps.Health,
		version:     deps.Version,
		environment: deps.Environment,
		startedAt:   startedAt,
		clock: func() time.Time {
			return clock().UTC()
		},
	}, nil
}

func (s *systemService) HealthReport(ctx context.Context) (SystemHealthReport, error) {
	report, err := s.health.Collect(ctx)
	if err != nil {
		return SystemHealthReport{}, err
	}

	report.Version = s.version
	report.Environment = s.environment
	report.Uptime = s.clock().Sub(s.startedAt)
	return report, nil
}
