package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/catalog"
	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/query"
	"github.com/MrSnakeDoc/catalog/internal/versioning"
)

// apiVersion reads the {version} route parameter.
func apiVersion(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "version")
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badParam("version", raw)
	}
	return v, nil
}

// ref reads {id} or {sourceId}, whichever the route declares.
func ref(r *http.Request) (catalog.Ref, error) {
	if s := chi.URLParam(r, "sourceId"); s != "" {
		return catalog.Ref{SourceID: s}, nil
	}
	id, err := rootID(r)
	return catalog.Ref{ID: id}, err
}

func rootID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badParam("id", raw)
	}
	return id, nil
}

func policy(r *http.Request) (versioning.Policy, error) {
	return versioning.ParsePolicy(r.URL.Query().Get("status"))
}

// filter reads list query parameters. Unset parameters leave the filter open.
func filter(r *http.Request, defaultPageSize int) (query.Filter, error) {
	q := r.URL.Query()
	f := query.Filter{PageSize: defaultPageSize}

	var err error
	if f.Policy, err = versioning.ParsePolicy(q.Get("status")); err != nil {
		return f, err
	}
	f.Status = domain.PublishingStatus(q.Get("publishingStatus"))
	f.ChannelType = domain.ChannelType(q.Get("serviceChannelType"))
	f.AreaType = q.Get("areaType")
	f.Municipality = q.Get("municipality")

	if v := q.Get("page"); v != "" {
		if f.Page, err = strconv.Atoi(v); err != nil {
			return f, badParam("page", v)
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if f.PageSize, err = strconv.Atoi(v); err != nil {
			return f, badParam("pageSize", v)
		}
	}
	if v := q.Get("date"); v != "" {
		if f.ModifiedAfter, err = time.Parse(time.RFC3339, v); err != nil {
			return f, badParam("date", v)
		}
	}
	if v := q.Get("dateBefore"); v != "" {
		if f.ModifiedBefore, err = time.Parse(time.RFC3339, v); err != nil {
			return f, badParam("dateBefore", v)
		}
	}
	if f.OrganizationIDs, err = idList("organizationId", q["organizationId"]); err != nil {
		return f, err
	}
	if f.RootIDs, err = idList("guids", q["guids"]); err != nil {
		return f, err
	}
	return f, nil
}

// idList accepts repeated parameters and comma separated values.
func idList(name string, values []string) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, v := range values {
		for _, raw := range strings.Split(v, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, badParam(name, raw)
			}
			out = append(out, id)
		}
	}
	return out, nil
}

// entityKind maps the {kind} route parameter.
func entityKind(r *http.Request) (domain.EntityKind, error) {
	raw := chi.URLParam(r, "kind")
	kind, ok := domain.ParseEntityKind(raw)
	if !ok {
		return "", domain.NotFound("", raw)
	}
	return kind, nil
}
