package handlers

import (
	"net/http"
	"strings"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
	"github.com/vitrinezap/api/internal/services"
)

// HealthHandlers serves the root liveness and readiness endpoints. Liveness
// never touches dependencies; readiness delegates to the system service, which
// probes them concurrently.
type HealthHandlers struct {
	version     string
	environment string
	startedAt   time.Time
	clock       func() time.Time
	system      services.SystemService
}

// HealthOption customises the health handlers.
type HealthOption func(*HealthHandlers)

// WithHealthVersion sets the version string reported by /healthz.
func WithHealthVersion(version string) HealthOption {
	return func(h *HealthHandlers) {
		h.version = strings.TrimSpace(version)
	}
}

// WithHealthEnvironment sets the environment label reported by /healthz.
func WithHealthEnvironment(environment string) HealthOption {
	return func(h *HealthHandlers) {
		h.environment = strings.TrimSpace(environment)
	}
}

// WithHealthSystemService wires the system service used by /readyz.
func WithHealthSystemService(system services.SystemService) HealthOption {
	return func(h *HealthHandlers) {
		h.system = system
	}
}

// WithHealthClock overrides the time source, primarily for tests.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithHealthStartedAt records process start time so /healthz can report uptime.
func WithHealthStartedAt(startedAt time.Time) HealthOption {
	return func(h *HealthHandlers) {
		h.startedAt = startedAt
	}
}

// NewHealthHandlers constructs health handlers with sensible defaults.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{
		version:     "dev",
		environment: "development",
		clock:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.startedAt.IsZero() {
		h.startedAt = h.clock().UTC()
	}
	return h
}

type healthzResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime,omitempty"`
	Timestamp   string `json:"timestamp"`
}

type readyzResponse struct {
	Status      string                  `json:"status"`
	Checks      map[string]checkPayload `json:"checks,omitempty"`
	GeneratedAt string                  `json:"generated_at,omitempty"`
}

type checkPayload struct {
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
}

// Healthz reports process liveness without touching any dependency.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.clock().UTC()
	payload := healthzResponse{
		Status:      domain.HealthStatusOK,
		Version:     h.version,
		Environment: h.environment,
		Timestamp:   formatTime(now),
	}
	if !h.startedAt.IsZero() {
		payload.Uptime = now.Sub(h.startedAt).Round(time.Second).String()
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

// Readyz probes dependencies through the system service. Degraded dependencies
// still report ready; only hard failures return 503.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.system == nil {
		writeJSONResponse(w, http.StatusOK, readyzResponse{Status: domain.HealthStatusOK})
		return
	}

	report, err := h.system.HealthReport(r.Context())
	if err != nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, readyzResponse{Status: domain.HealthStatusError})
		return
	}

	payload := readyzResponse{
		Status:      report.Status,
		GeneratedAt: formatTime(report.GeneratedAt),
	}
	if len(report.Checks) > 0 {
		payload.Checks = make(map[string]checkPayload, len(report.Checks))
		for name, check := range report.Checks {
			payload.Checks[name] = checkPayload{
				Status:    check.Status,
				Detail:    check.Detail,
				Error:     check.Error,
				LatencyMS: check.Latency.Milliseconds(),
			}
		}
	}

	status := http.StatusOK
	if report.Status == domain.HealthStatusError {
		status = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, status, payload)
}
