package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/mw"
)

func init() { Register("api", registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api/v{version:[0-9]+}", func(api chi.Router) {
		api.Use(
			mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
			mw.EnforceHost(d.AllowedHosts, d.Logger),
			mw.RateLimit(mw.RateLimitConfig{
				Burst:      d.RateBurst,
				PerMinute:  d.RatePerMin,
				MaxEntries: 10000,
				TrustProxy: d.TrustProxy,
			}),
			mw.Caller(d.Logger),
		)

		api.Route("/ServiceChannel", func(ch chi.Router) {
			ch.Get("/", handlers.ListChannels(d))
			ch.Get("/sourceId/{sourceId}", handlers.GetChannel(d))
			ch.Put("/sourceId/{sourceId}", handlers.UpdateChannel(d))
			ch.Get("/{id}", handlers.GetChannel(d))
			ch.Put("/{id}", handlers.UpdateChannel(d))
			ch.Post("/{channelType}", handlers.CreateChannel(d))

			lc := ch.With(withKind(domain.KindServiceChannel))
			lc.Post("/{id}/publish", handlers.Publish(d))
			lc.Post("/{id}/withdraw", handlers.Withdraw(d))
			lc.Post("/{id}/archive", handlers.Archive(d))
		})

		api.Route("/Connection", func(c chi.Router) {
			c.Put("/serviceId/{id}", handlers.ConnectChannels(d))
			c.Put("/serviceChannelId/{id}", handlers.ConnectServices(d))
			c.Post("/check", handlers.CheckChannels(d))
		})

		api.Route("/{kind}", func(e chi.Router) {
			e.Get("/", handlers.ListEntities(d))
			e.Post("/", handlers.CreateEntity(d))
			e.Get("/sourceId/{sourceId}", handlers.GetEntity(d))
			e.Put("/sourceId/{sourceId}", handlers.UpdateEntity(d))
			e.Get("/{id}", handlers.GetEntity(d))
			e.Put("/{id}", handlers.UpdateEntity(d))
			e.Post("/{id}/publish", handlers.Publish(d))
			e.Post("/{id}/withdraw", handlers.Withdraw(d))
			e.Post("/{id}/archive", handlers.Archive(d))
		})
	})
}

// withKind fills the {kind} route parameter for routes that imply it.
func withKind(kind domain.EntityKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				rctx.URLParams.Add("kind", string(kind))
			}
			next.ServeHTTP(w, r)
		})
	}
}
