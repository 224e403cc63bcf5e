package mw

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/catalog/internal/utils"
)

// RateLimitConfig configures the per-client token buckets.
type RateLimitConfig struct {
	Burst      int // bucket size, <= 0 disables limiting
	PerMinute  int // refill rate
	MaxEntries int // idle buckets are evicted once this many exist
	IdleTTL    time.Duration
	TrustProxy bool // resolve the client IP from proxy headers

	// Key picks the bucket of a request. Defaults to ByCallerOrIP.
	Key func(r *http.Request, trustProxy bool) string

	now func() time.Time
}

// ByCallerOrIP buckets identified callers by user name and anonymous ones by
// client IP, so gateway users sharing an egress IP do not starve each other.
func ByCallerOrIP(r *http.Request, trustProxy bool) string {
	if u := r.Header.Get(HeaderCallerUser); u != "" {
		return "user:" + u
	}
	return "ip:" + utils.ClientIP(r, trustProxy)
}

type tokens struct {
	level float64
	at    time.Time
}

type buckets struct {
	mu       sync.Mutex
	perSec   float64
	capacity float64
	max      int
	idle     time.Duration
	byKey    map[string]*tokens
}

// take refills the bucket of key and consumes one token. When the bucket is
// empty it returns the number of seconds until the next token.
func (b *buckets) take(key string, now time.Time) (left int, wait int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.byKey[key]
	if !ok {
		if b.max > 0 && len(b.byKey) >= b.max {
			b.evict(now)
		}
		t = &tokens{level: b.capacity, at: now}
		b.byKey[key] = t
	}

	if dt := now.Sub(t.at).Seconds(); dt > 0 {
		t.level = math.Min(b.capacity, t.level+dt*b.perSec)
	}
	t.at = now

	if t.level < 1 {
		return 0, max(1, int(math.Ceil((1-t.level)/b.perSec)))
	}
	t.level--
	return int(t.level), 0
}

// evict drops buckets idle for longer than the ttl.
func (b *buckets) evict(now time.Time) {
	for k, t := range b.byKey {
		if now.Sub(t.at) > b.idle {
			delete(b.byKey, k)
		}
	}
}

// RateLimit rejects requests beyond the bucket of their key with 429.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Burst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.PerMinute < 1 {
		cfg.PerMinute = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Key == nil {
		cfg.Key = ByCallerOrIP
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}

	b := &buckets{
		perSec:   float64(cfg.PerMinute) / 60,
		capacity: float64(cfg.Burst),
		max:      cfg.MaxEntries,
		idle:     cfg.IdleTTL,
		byKey:    make(map[string]*tokens, 256),
	}
	limit := strconv.Itoa(cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			left, wait := b.take(cfg.Key(r, cfg.TrustProxy), cfg.now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(left))

			if wait > 0 {
				h.Set("Retry-After", strconv.Itoa(wait))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "TooManyRequests",
					"message": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
