package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
)

type stubHealthRepository struct {
	collectFunc func(ctx context.Context) (domain.SystemHealthReport, error)
}

func (s *stubHealthRepository) Collect(ctx context.Context) (domain.SystemHealthReport, error) {
	if s.collectFunc != nil {
		return s.collectFunc(ctx)
	}
	return domain.SystemHealthReport{Status: domain.HealthStatusOK}, nil
}

func TestSystemServiceHealthReportAnnotatesBuildInfo(t *testing.T) {
	startedAt := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	now := startedAt.Add(90 * time.Second)

	service, err := NewSystemService(SystemServiceDeps{
		Health: &stubHealthRepository{
			collectFunc: func(ctx context.Context) (domain.SystemHealthReport, error) {
				return domain.SystemHealthReport{
					Status: domain.HealthStatusOK,
					Checks: map[string]domain.SystemHealthCheck{
						"firestore": {Status: domain.HealthStatusOK},
					},
				}, nil
			},
		},
		Version:     "1.4.2",
		Environment: "production",
		StartedAt:   startedAt,
		Clock:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("unexpected error constructing system service: %v", err)
	}

	report, err := service.HealthReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Version != "1.4.2" || report.Environment != "production" {
		t.Fatalf("expected build info annotated, got %+v", report)
	}
	if report.Uptime != 90*time.Second {
		t.Fatalf("expected uptime 90s, got %v", report.Uptime)
	}
	if len(report.Checks) != 1 {
		t.Fatalf("expected collected checks preserved, got %+v", report.Checks)
	}
}

func TestSystemServiceHealthReportPropagatesCollectFailure(t *testing.T) {
	collectErr := errors.New("probe panic")
	service, err := NewSystemService(SystemServiceDeps{
		Health: &stubHealthRepository{
			collectFunc: func(ctx context.Context) (domain.SystemHealthReport, error) {
				return domain.SystemHealthReport{}, collectErr
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error constructing system service: %v", err)
	}

	if _, err := service.HealthReport(context.Background()); !errors.Is(err, collectErr) {
		t.Fatalf("expected collect error propagated, got %v", err)
	}
}
