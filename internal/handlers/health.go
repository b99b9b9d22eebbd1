package handlers

import (
	"context"
	"net/http"
	"time"

	"portfolio/internal/logger"
)

// Pinger checks a backing service. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Health reports whether the backing services answer.
type Health struct {
	checks map[string]Pinger
}

// NewHealth creates the health handler.
func NewHealth(checks map[string]Pinger) *Health {
	return &Health{checks: checks}
}

// Check pings every dependency with a short timeout.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	for name, p := range h.checks {
		if err := p.PingContext(ctx); err != nil {
			logger.Warnw("health_check_failed", "dependency", name, "error", err)
			status[name] = "down"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	writeJSON(w, code, status)
}
