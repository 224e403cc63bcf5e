package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/catalog/internal/httpserver/deps"
)

const probeTimeout = 2 * time.Second

type readyzResponse struct {
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

// Readyz reports ready once the store answers. The Redis tier is optional and
// never blocks readiness; /infra reports its state.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		if _, err := d.Catalog.Stats(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Reason: "store unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
