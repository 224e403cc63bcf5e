package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/catalog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/mw"
)

func init() { Register("probes", registerProbes) }

// healthz is public; readiness and the infra report are restricted to the
// allowed networks.
func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	internal := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	internal.Get("/readyz", handlers.Readyz(d))
	internal.Get("/infra", handlers.Infra(d))
}
