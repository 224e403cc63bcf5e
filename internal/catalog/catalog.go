// Package catalog runs catalog operations. Each operation is one unit of work
// on the store: it resolves, writes and projects inside a single transaction.
package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/connections"
	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/logger"
	"github.com/MrSnakeDoc/catalog/internal/publishing"
	"github.com/MrSnakeDoc/catalog/internal/query"
	"github.com/MrSnakeDoc/catalog/internal/store/memstore"
	"github.com/MrSnakeDoc/catalog/internal/translation"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
	"github.com/MrSnakeDoc/catalog/internal/versioning"
)

// Ref addresses a root by id or by the caller's source id.
type Ref struct {
	ID       uuid.UUID
	SourceID string
}

func (r Ref) String() string {
	if r.SourceID != "" {
		return "source:" + r.SourceID
	}
	return r.ID.String()
}

type Catalog struct {
	store      *memstore.Store
	types      *typecache.Cache
	resolver   *versioning.Resolver
	writer     *versioning.Writer
	machine    *publishing.Machine
	engine     *connections.Engine
	query      *query.Facade
	translator *translation.Translator
	log        logger.Logger
}

func New(store *memstore.Store, types *typecache.Cache, postal translation.PostalLookup, log logger.Logger) *Catalog {
	resolver := versioning.NewResolver(types)
	return &Catalog{
		store:      store,
		types:      types,
		resolver:   resolver,
		writer:     versioning.NewWriter(types),
		machine:    publishing.NewMachine(types, resolver),
		engine:     connections.NewEngine(resolver),
		query:      query.NewFacade(types, resolver),
		translator: translation.New(types, postal),
		log:        log.With(logger.String("component", "catalog")),
	}
}

// Types exposes the type cache the catalog was built with.
func (c *Catalog) Types() *typecache.Cache { return c.types }

// Stats reports stored row counts per table.
func (c *Catalog) Stats(ctx context.Context) (map[string]int, error) {
	return c.store.Stats(ctx)
}

func (c *Catalog) lookup(u *memstore.UnitOfWork, caller domain.Caller, kind domain.EntityKind, ref Ref, policy versioning.Policy) (*domain.Version, error) {
	if ref.SourceID != "" {
		return c.resolver.ResolveBySource(u, caller, kind, ref.SourceID, policy)
	}
	return c.resolver.Resolve(u, kind, ref.ID, policy)
}

// save writes draft as a new version and, when requested, publishes it in the
// same transaction.
func (c *Catalog) save(ctx context.Context, version int, caller domain.Caller, draft *domain.VersionDraft) (*translation.Snapshot, error) {
	var (
		snap    *translation.Snapshot
		created bool
	)
	err := c.store.Write(ctx, func(u *memstore.UnitOfWork) error {
		written, err := c.writer.CreateVersion(u, caller, draft)
		if err != nil {
			return err
		}
		created = written.Created

		v := written.Version
		if draft.Publish {
			if _, err := c.machine.PublishAllAvailableLanguages(u, caller, v.ID); err != nil {
				return err
			}
			if v, err = u.Version(v.ID); err != nil {
				return err
			}
		}

		snap, err = c.snapshot(u, caller, v)
		return err
	})
	if err != nil {
		return nil, c.fail("save "+string(draft.Kind), err,
			logger.String("caller", caller.UserName),
			logger.Int("api_version", version))
	}

	c.log.Info("version saved",
		logger.String("kind", string(draft.Kind)),
		logger.Stringer("root_id", snap.Version.RootID),
		logger.Stringer("version_id", snap.Version.ID),
		logger.Int("sequence", snap.Version.Sequence),
		logger.Bool("created", created),
		logger.Bool("published", draft.Publish),
		logger.String("caller", caller.UserName),
		logger.Int("api_version", version))
	return snap, nil
}

// snapshot gathers what projecting v needs. The source id shown is the one the
// caller registered, if any.
func (c *Catalog) snapshot(u *memstore.UnitOfWork, caller domain.Caller, v *domain.Version) (*translation.Snapshot, error) {
	langs, err := u.Languages(v.ID)
	if err != nil {
		return nil, err
	}
	snap := &translation.Snapshot{Version: v, Languages: langs}

	if caller.UserName != "" {
		sources, err := u.SourcesOfRoot(v.RootID)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			if src.Caller == caller.UserName {
				snap.SourceID = src.SourceID
				break
			}
		}
	}

	switch v.Kind {
	case domain.KindService:
		snap.Connections, err = u.ConnectionsOfService(v.RootID)
	case domain.KindServiceChannel:
		snap.Connections, err = u.ConnectionsOfChannel(v.RootID)
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// fail logs err at a level matching its kind and returns it unchanged.
func (c *Catalog) fail(op string, err error, fields ...logger.Field) error {
	fields = append(fields, logger.Error(err))
	if domain.CodeOf(err) != "" {
		c.log.Debug(op+" rejected", fields...)
	} else {
		c.log.Error(op+" failed", fields...)
	}
	return err
}
