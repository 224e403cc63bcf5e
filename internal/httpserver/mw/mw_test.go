package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestRateLimit(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := RateLimit(RateLimitConfig{
		Burst:     2,
		PerMinute: 60,
		now:       func() time.Time { return now },
	})(ok)

	req := func(user string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "192.0.2.1:1000"
		if user != "" {
			r.Header.Set(HeaderCallerUser, user)
		}
		return r
	}

	assert.Equal(t, http.StatusNoContent, serve(h, req("alice")).Code)
	rec := serve(h, req("alice"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(h, req("alice"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "TooManyRequests")

	// other callers behind the same address have their own bucket
	assert.Equal(t, http.StatusNoContent, serve(h, req("bob")).Code)
	assert.Equal(t, http.StatusNoContent, serve(h, req("")).Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, serve(h, req("alice")).Code)
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 0})(ok)
	for i := 0; i < 10; i++ {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitEvictsIdleBuckets(t *testing.T) {
	b := &buckets{perSec: 1, capacity: 1, max: 2, idle: time.Minute, byKey: map[string]*tokens{}}
	start := time.Unix(0, 0)

	b.take("a", start)
	b.take("b", start)
	b.take("c", start.Add(2*time.Minute))

	assert.Len(t, b.byKey, 1)
	assert.Contains(t, b.byKey, "c")
}

func TestCaller(t *testing.T) {
	org := uuid.New()
	var got domain.Caller
	h := Caller(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CallerFrom(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderCallerUser, " editor@example.fi ")
	r.Header.Set(HeaderCallerOrganizations, org.String()+", not-a-uuid")
	r.Header.Set(HeaderCallerASTI, "true")
	serve(h, r)

	assert.Equal(t, "editor@example.fi", got.UserName)
	assert.Equal(t, []uuid.UUID{org}, got.Organizations)
	assert.True(t, got.ASTI)
}

func TestCallerFromEmptyContext(t *testing.T) {
	c := CallerFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.Empty(t, c.UserName)
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"catalog.local"}, logger.NewNop())(ok)

	r := httptest.NewRequest(http.MethodGet, "http://CATALOG.local:8080/", nil)
	assert.Equal(t, http.StatusNoContent, serve(h, r).Code)

	r = httptest.NewRequest(http.MethodGet, "http://evil.example/", nil)
	assert.Equal(t, http.StatusMisdirectedRequest, serve(h, r).Code)
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, false, logger.NewNop())(ok)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.1.1:5000"
	assert.Equal(t, http.StatusNoContent, serve(h, r).Code)

	r.RemoteAddr = "192.0.2.1:5000"
	assert.Equal(t, http.StatusForbidden, serve(h, r).Code)
}
