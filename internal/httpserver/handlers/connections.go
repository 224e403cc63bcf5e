package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/mw"
	"github.com/MrSnakeDoc/catalog/internal/translation"
)

type connectFunc func(ctx context.Context, version int, caller domain.Caller, owner uuid.UUID, in *translation.ConnectionsIn, strict bool) (*translation.ConnectionResultOut, error)

// ConnectChannels serves PUT /Connection/serviceId/{id}.
func ConnectChannels(d deps.Deps) http.HandlerFunc {
	return connect(d, d.Catalog.ConnectChannels)
}

// ConnectServices serves PUT /Connection/serviceChannelId/{id}.
func ConnectServices(d deps.Deps) http.HandlerFunc {
	return connect(d, d.Catalog.ConnectServices)
}

func connect(d deps.Deps, fn connectFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version, err := apiVersion(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		owner, err := rootID(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		strict := false
		if v := r.URL.Query().Get("strict"); v != "" {
			if strict, err = strconv.ParseBool(v); err != nil {
				writeError(w, d.Logger, badParam("strict", v))
				return
			}
		}

		var in translation.ConnectionsIn
		if err := decode(r, &in); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out, err := fn(r.Context(), version, mw.CallerFrom(r.Context()), owner, &in, strict)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type checkRequest struct {
	IDs []string `json:"ids"`
}

// CheckChannels serves POST /Connection/check.
func CheckChannels(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version, err := apiVersion(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		var in checkRequest
		if err := decode(r, &in); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out, err := d.Catalog.CheckChannels(r.Context(), version, mw.CallerFrom(r.Context()), in.IDs)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
