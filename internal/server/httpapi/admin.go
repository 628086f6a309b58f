package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadyFunc reports whether the service can serve traffic.
type ReadyFunc func(ctx context.Context) error

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message,omitempty"`
}

// NewAdminRouter serves /metrics and the liveness and readiness probes on a
// listener separate from the public API.
func NewAdminRouter(ready ReadyFunc) http.Handler {
	r := chi.NewRouter()

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: timestamp()})
	})

	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{
					Status:    "fail",
					Timestamp: timestamp(),
					Message:   err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: timestamp()})
	})

	return r
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
