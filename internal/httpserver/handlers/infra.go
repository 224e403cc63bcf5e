package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/catalog/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool           `json:"ok"`
	Counts map[string]int `json:"counts,omitempty"`
	Mode   string         `json:"mode,omitempty"`
	Impact string         `json:"impact,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":     checkStore(r.Context(), d),
			"reference": {OK: d.ReferenceCounts["postal_codes"] > 0, Counts: d.ReferenceCounts},
			"redis":     checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if !components["store"].OK || !components["reference"].OK {
		return "critical"
	}
	if redis := components["redis"]; !redis.OK && redis.Mode != "disabled" {
		return "degraded"
	}
	return "operational"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	counts, err := d.Catalog.Stats(ctx)
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true, Counts: counts}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.SharedTier == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "postal lookups served from the local table",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := d.SharedTier.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "postal lookups fall back to the local table",
			Error:  "unreachable",
		}
	}

	status := componentStatus{OK: true, Mode: "shared"}
	if n, err := d.SharedTier.CountPostalCodes(ctx); err == nil {
		status.Counts = map[string]int{"postal_codes": int(n)}
	}
	return status
}
