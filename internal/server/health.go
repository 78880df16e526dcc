package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// probeTimeout caps each dependency probe during a readiness check so
// /api/ready answers promptly when a dependency hangs instead of refusing.
const probeTimeout = 5 * time.Second

// Pinger reports the reachability of one server dependency. Ping returns
// nil when healthy. Implementations must be safe for concurrent use.
type Pinger interface {
	Ping(ctx context.Context) error

	// Name labels the dependency in readiness responses, e.g. "qdrant".
	Name() string
}

// readyCheck is one dependency's result inside a readiness response.
type readyCheck struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readyResponse struct {
	Ready  bool         `json:"ready"`
	Checks []readyCheck `json:"checks"`
}

// handleReady handles GET /api/ready. Every registered Pinger is probed
// with its own short timeout; any failure turns the response into a 503.
// With no pingers registered the endpoint degrades to a liveness check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{Ready: true, Checks: []readyCheck{}}

	for _, p := range s.pingers {
		probeCtx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := p.Ping(probeCtx)
		cancel()

		c := readyCheck{Name: p.Name(), OK: err == nil}
		if err != nil {
			c.Error = err.Error()
			resp.Ready = false
			s.log.Warn("readiness probe failed",
				slog.String("dependency", p.Name()),
				slog.Any("error", err))
		}
		resp.Checks = append(resp.Checks, c)
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
