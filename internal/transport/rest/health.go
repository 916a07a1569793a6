package rest

import (
	"context"
	"net/http"
	"time"
)

// pinger is a component whose availability can be probed.
type pinger interface {
	Ping(ctx context.Context) error
}

// CheckFunc adapts a function to a health-checked component.
type CheckFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f CheckFunc) Ping(ctx context.Context) error { return f(ctx) }

// Component is a named dependency probed by the readiness and health endpoints.
type Component struct {
	Name string
	// Optional components are reported but never make the service unready.
	Optional bool
	Check    pinger
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	components []Component
	version    string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(version string, components ...Component) *HealthHandler {
	return &HealthHandler{components: components, version: version}
}

// HealthResponse is the JSON response for /live, /ready and /health.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready is the readiness probe: 200 when every required component answers,
// 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	components, ok := h.probe(r.Context())

	status, code := "ok", http.StatusOK
	if !ok {
		status, code = "down", http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{Status: status, Components: components, Timestamp: time.Now()})
}

// Health reports every component with its probe latency. A failing optional
// component degrades the status without failing the check.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components, ok := h.probe(r.Context())

	status, code := "ok", http.StatusOK
	switch {
	case !ok:
		status, code = "down", http.StatusServiceUnavailable
	case anyDown(components):
		status = "degraded"
	}

	writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) probe(ctx context.Context) (map[string]CompStatus, bool) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ok := true
	out := make(map[string]CompStatus, len(h.components))
	for _, c := range h.components {
		start := time.Now()
		err := c.Check.Ping(ctx)
		if err != nil {
			out[c.Name] = CompStatus{Status: "down", Error: err.Error()}
			if !c.Optional {
				ok = false
			}
			continue
		}
		out[c.Name] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}
	return out, ok
}

func anyDown(components map[string]CompStatus) bool {
	for _, c := range components {
		if c.Status != "ok" {
			return true
		}
	}
	return false
}
