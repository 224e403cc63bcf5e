package mw

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/logger"
)

// Identity headers set by the upstream gateway after authentication.
const (
	HeaderCallerUser          = "X-Caller-User"
	HeaderCallerOrganizations = "X-Caller-Organizations"
	HeaderCallerASTI          = "X-Caller-Asti"
)

type callerKey struct{}

// Caller reads the caller identity headers into the request context. Missing
// headers yield an anonymous caller; operations that need attribution reject
// it themselves. Malformed organization ids are skipped.
func Caller(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := domain.Caller{UserName: strings.TrimSpace(r.Header.Get(HeaderCallerUser))}

			for _, raw := range strings.Split(r.Header.Get(HeaderCallerOrganizations), ",") {
				raw = strings.TrimSpace(raw)
				if raw == "" {
					continue
				}
				id, err := uuid.Parse(raw)
				if err != nil {
					log.Debug("ignoring malformed caller organization", logger.String("value", raw))
					continue
				}
				c.Organizations = append(c.Organizations, id)
			}

			if v := r.Header.Get(HeaderCallerASTI); v != "" {
				c.ASTI, _ = strconv.ParseBool(v)
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), c)))
		})
	}
}

// WithCaller returns ctx carrying c.
func WithCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored in ctx, or an anonymous caller.
func CallerFrom(ctx context.Context) domain.Caller {
	c, _ := ctx.Value(callerKey{}).(domain.Caller)
	return c
}
