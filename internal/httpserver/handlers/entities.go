package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/catalog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/mw"
	"github.com/MrSnakeDoc/catalog/internal/translation"
)

// The entity handlers serve organizations, services and service collections
// under /{kind}.

func ListEntities(d deps.Deps) http.HandlerFunc {
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
		f, err := filter(r, d.DefaultPageSize)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		page, err := d.Catalog.ListEntities(r.Context(), version, mw.CallerFrom(r.Context()), kind, f)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func GetEntity(d deps.Deps) http.HandlerFunc {
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

		out, err := d.Catalog.GetEntity(r.Context(), version, mw.CallerFrom(r.Context()), kind, target, p)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func CreateEntity(d deps.Deps) http.HandlerFunc {
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

		var in translation.EntityIn
		if err := decode(r, &in); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out, err := d.Catalog.CreateEntity(r.Context(), version, mw.CallerFrom(r.Context()), kind, &in)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func UpdateEntity(d deps.Deps) http.HandlerFunc {
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
		target, err := ref(r)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		var in translation.EntityIn
		if err := decode(r, &in); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out, err := d.Catalog.UpdateEntity(r.Context(), version, mw.CallerFrom(r.Context()), kind, target, &in)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
