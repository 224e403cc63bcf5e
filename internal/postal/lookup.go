// Package postal resolves postal codes to municipalities through a tiered
// lookup: in-process cache, then the shared Redis tier, then the reference
// table loaded at startup.
package postal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/logger"
)

const (
	memoryExpiration = 10 * time.Minute
	cleanupInterval  = 30 * time.Minute
)

// RemoteCache is the shared tier. *redis.Store implements it.
type RemoteCache interface {
	GetMunicipalityCode(ctx context.Context, postalCode string) (string, error)
	SetMunicipalityCode(ctx context.Context, postalCode, municipalityCode string) error
}

// Lookup is safe for concurrent use.
type Lookup struct {
	mu             sync.RWMutex
	table          map[string]string
	municipalities map[string]domain.Municipality
	mem            *cache.Cache
	remote         RemoteCache
	log            logger.Logger
}

// New builds a lookup over the reference table. remote may be nil.
func New(table map[string]string, municipalities map[string]domain.Municipality, remote RemoteCache, log logger.Logger) *Lookup {
	return &Lookup{
		table:          table,
		municipalities: municipalities,
		mem:            cache.New(memoryExpiration, cleanupInterval),
		remote:         remote,
		log:            log,
	}
}

// MunicipalityCode returns the municipality code of postalCode. The second
// result is false when the postal code is unknown.
func (l *Lookup) MunicipalityCode(ctx context.Context, postalCode string) (string, bool, error) {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode == "" {
		return "", false, nil
	}

	if v, ok := l.mem.Get(postalCode); ok {
		return v.(string), true, nil
	}

	if l.remote != nil {
		code, err := l.remote.GetMunicipalityCode(ctx, postalCode)
		if err != nil {
			// the shared tier is an optimisation only
			l.log.Warn("postal lookup: redis tier failed", logger.String("postal_code", postalCode), logger.Error(err))
		} else if code != "" {
			l.mem.SetDefault(postalCode, code)
			return code, true, nil
		}
	}

	l.mu.RLock()
	code, ok := l.table[postalCode]
	l.mu.RUnlock()
	if !ok {
		return "", false, nil
	}

	l.mem.SetDefault(postalCode, code)
	if l.remote != nil {
		if err := l.remote.SetMunicipalityCode(ctx, postalCode, code); err != nil {
			l.log.Warn("postal lookup: redis write-back failed", logger.String("postal_code", postalCode), logger.Error(err))
		}
	}
	return code, true, nil
}

// Municipality returns the reference municipality with code.
func (l *Lookup) Municipality(code string) (domain.Municipality, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.municipalities[code]
	return m, ok
}

// Table returns the reference postal table.
func (l *Lookup) Table() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table
}

// Municipalities returns the reference municipalities.
func (l *Lookup) Municipalities() map[string]domain.Municipality {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.municipalities
}

// Replace swaps the reference data and drops the in-process tier.
func (l *Lookup) Replace(table map[string]string, municipalities map[string]domain.Municipality) {
	l.mu.Lock()
	l.table = table
	l.municipalities = municipalities
	l.mu.Unlock()
	l.mem.Flush()
}
