package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/catalog/internal/catalog"
	"github.com/MrSnakeDoc/catalog/internal/logger"
	"github.com/MrSnakeDoc/catalog/internal/version"
)

// SharedTier is the Redis reference tier as seen by the probes.
type SharedTier interface {
	Ping(ctx context.Context) error
	CountPostalCodes(ctx context.Context) (int64, error)
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Build     version.Info
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed on the API
	AllowedCIDRS []string // client IPs allowed on the API and probes
	TrustProxy   bool     // true if running behind a trusted reverse proxy

	RateBurst  int // per-client token bucket size, 0 disables limiting
	RatePerMin int // per-client refill rate

	DefaultPageSize int

	Catalog    *catalog.Catalog
	SharedTier SharedTier // nil when the shared reference tier is disabled

	// ReferenceCounts describes the loaded reference data (postal codes,
	// municipalities, type entries).
	ReferenceCounts map[string]int
}
