package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/logger"
	"github.com/MrSnakeDoc/catalog/internal/sources/reference"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
)

// ReferencePublisher is the shared cache tier. *redis.Store implements it.
type ReferencePublisher interface {
	Flush(ctx context.Context) error
	SavePostalCodesMany(ctx context.Context, table map[string]string) error
	SaveMunicipalitiesMany(ctx context.Context, municipalities map[string]domain.Municipality) error
}

// PostalTable receives reloaded postal data. *postal.Lookup implements it.
type PostalTable interface {
	Replace(table map[string]string, municipalities map[string]domain.Municipality)
}

// ReferenceReloader periodically re-reads the reference data file and
// refreshes the type cache, the postal table and the redis tier.
type ReferenceReloader struct {
	loader   *reference.Loader
	mapper   *reference.Mapper
	types    *typecache.Cache
	postal   PostalTable
	remote   ReferencePublisher
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewReferenceReloader creates a reloader. remote may be nil; a zero interval
// disables the periodic refresh.
func NewReferenceReloader(
	referenceFile string,
	types *typecache.Cache,
	postal PostalTable,
	remote ReferencePublisher,
	log logger.Logger,
	interval time.Duration,
) *ReferenceReloader {
	return &ReferenceReloader{
		loader:   reference.NewLoader(referenceFile),
		mapper:   reference.NewMapper(),
		types:    types,
		postal:   postal,
		remote:   remote,
		logger:   log.With(logger.String("component", "reference_reloader")),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start pushes the reference data to redis, then reloads on every tick.
func (rr *ReferenceReloader) Start(ctx context.Context) error {
	if err := rr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reference load failed: %w", err)
	}

	if rr.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(rr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := rr.Reload(ctx); err != nil {
					// previous data stays in place
					rr.logger.Error("failed to reload reference data", logger.Error(err))
				}
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (rr *ReferenceReloader) Stop() {
	close(rr.stopCh)
}

// Reload loads and validates the reference file before swapping anything.
func (rr *ReferenceReloader) Reload(ctx context.Context) error {
	config, err := rr.loader.Load()
	if err != nil {
		return err
	}

	data, err := rr.mapper.Map(config)
	if err != nil {
		return fmt.Errorf("failed to map reference data: %w", err)
	}

	if err := rr.types.Update(data.Taxonomy); err != nil {
		return fmt.Errorf("failed to update type cache: %w", err)
	}
	if rr.postal != nil {
		rr.postal.Replace(data.PostalCodes, data.Municipalities)
	}

	rr.logger.Info("reference data loaded",
		logger.Int("types", rr.types.Count()),
		logger.Int("postal_codes", len(data.PostalCodes)),
		logger.Int("municipalities", len(data.Municipalities)))

	// Update Redis store (best effort)
	if rr.remote != nil {
		// drop codes that left the reference file
		if err := rr.remote.Flush(ctx); err != nil {
			rr.logger.Warn("failed to flush redis reference keys", logger.Error(err))
			return nil
		}
		if err := rr.remote.SavePostalCodesMany(ctx, data.PostalCodes); err != nil {
			rr.logger.Warn("failed to push postal codes to redis", logger.Error(err))
			return nil
		}
		if err := rr.remote.SaveMunicipalitiesMany(ctx, data.Municipalities); err != nil {
			rr.logger.Warn("failed to push municipalities to redis", logger.Error(err))
			return nil
		}
		rr.logger.Info("reference data pushed to redis")
	}

	return nil
}
