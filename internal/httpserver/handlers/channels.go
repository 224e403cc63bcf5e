package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/mw"
	"github.com/MrSnakeDoc/catalog/internal/translation"
)

// ListChannels serves GET /ServiceChannel.
func ListChannels(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version, err := apiVersion(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		f, err := filter(r, d.DefaultPageSize)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		page, err := d.Catalog.ListChannels(r.Context(), version, mw.CallerFrom(r.Context()), f)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// GetChannel serves GET /ServiceChannel/{id} and /ServiceChannel/sourceId/{sourceId}.
func GetChannel(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version, err := apiVersion(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		target, err := ref(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		p, err := policy(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out, err := d.Catalog.GetChannel(r.Context(), version, mw.CallerFrom(r.Context()), target, p)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CreateChannel serves POST /ServiceChannel/{channelType}.
func CreateChannel(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version, err := apiVersion(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		raw := chi.URLParam(r, "channelType")
		channelType, ok := domain.ParseChannelType(raw)
		if !ok {
			writeError(w, d.Logger, domain.NotFound("", raw))
			return
		}

		var in translation.ChannelIn
		if err := decode(r, &in); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out, err := d.Catalog.CreateChannel(r.Context(), version, mw.CallerFrom(r.Context()), channelType, &in)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// UpdateChannel serves PUT /ServiceChannel/{id} and /ServiceChannel/sourceId/{sourceId}.
func UpdateChannel(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version, err := apiVersion(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		target, err := ref(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		var in translation.ChannelIn
		if err := decode(r, &in); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out, err := d.Catalog.UpdateChannel(r.Context(), version, mw.CallerFrom(r.Context()), target, &in)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
