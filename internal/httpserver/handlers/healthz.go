package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/catalog/internal/translation"
	"github.com/MrSnakeDoc/catalog/internal/version"
)

type apiRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	version.Info
	APIVersions map[string]apiRange `json:"api_versions"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	ranges := make(map[string]apiRange, len(domain.EntityKinds))
	for _, k := range domain.EntityKinds {
		ranges[string(k)] = apiRange{Min: translation.Floor(k), Max: translation.MaxVersion}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: now().Sub(start).Seconds(),
			Info:          d.Build,
			APIVersions:   ranges,
		})
	}
}
