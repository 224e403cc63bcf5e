package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/mw"
	"github.com/MrSnakeDoc/catalog/internal/translation"
)

type lifecycleFunc func(ctx context.Context, version int, caller domain.Caller, kind domain.EntityKind, rootID uuid.UUID) (*translation.PublishingOut, error)

// Publish serves POST /{kind}/{id}/publish.
func Publish(d deps.Deps) http.HandlerFunc {
	return lifecycle(d, d.Catalog.Publish)
}

// Withdraw serves POST /{kind}/{id}/withdraw.
func Withdraw(d deps.Deps) http.HandlerFunc {
	return lifecycle(d, d.Catalog.Withdraw)
}

// Archive serves POST /{kind}/{id}/archive.
func Archive(d deps.Deps) http.HandlerFunc {
	return lifecycle(d, d.Catalog.Archive)
}

func lifecycle(d deps.Deps, fn lifecycleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version, err := apiVersion(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		kind, err := entityKind(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		id, err := rootID(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out, err := fn(r.Context(), version, mw.CallerFrom(r.Context()), kind, id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
