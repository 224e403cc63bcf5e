package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/connections"
	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/logger"
	"github.com/MrSnakeDoc/catalog/internal/store/memstore"
	"github.com/MrSnakeDoc/catalog/internal/translation"
)

// ConnectChannels replaces the channels of a service with the requested
// relations. With strict set, one unresolvable channel fails the request.
func (c *Catalog) ConnectChannels(ctx context.Context, version int, caller domain.Caller, serviceID uuid.UUID, in *translation.ConnectionsIn, strict bool) (*translation.ConnectionResultOut, error) {
	return c.connect(ctx, version, caller, serviceID, connections.ServiceToChannels, in, strict)
}

// ConnectServices replaces the services of a channel with the requested
// relations.
func (c *Catalog) ConnectServices(ctx context.Context, version int, caller domain.Caller, channelID uuid.UUID, in *translation.ConnectionsIn, strict bool) (*translation.ConnectionResultOut, error) {
	return c.connect(ctx, version, caller, channelID, connections.ChannelToServices, in, strict)
}

func (c *Catalog) connect(ctx context.Context, version int, caller domain.Caller, owner uuid.UUID, direction connections.Direction, in *translation.ConnectionsIn, strict bool) (*translation.ConnectionResultOut, error) {
	relations, opts, err := c.translator.RelationsToInternal(version, direction, in)
	if err != nil {
		return nil, c.fail("connect", err)
	}
	opts.Replace = true
	opts.Strict = strict

	var result *connections.Result
	err = c.store.Write(ctx, func(u *memstore.UnitOfWork) error {
		var err error
		result, err = c.engine.Apply(u, caller, owner, relations, opts)
		return err
	})
	if err != nil {
		return nil, c.fail("connect", err,
			logger.Stringer("owner_id", owner),
			logger.String("caller", caller.UserName))
	}

	c.log.Info("connections applied",
		logger.Stringer("owner_id", owner),
		logger.Int("saved", len(result.Saved)),
		logger.Int("removed", len(result.Removed)),
		logger.Int("unresolved", len(result.Unresolved)),
		logger.Bool("asti", caller.ASTI),
		logger.String("caller", caller.UserName),
		logger.Int("api_version", version))

	return c.translator.ConnectionResult(result), nil
}

// CheckChannels reports which channels the caller can connect to. Channels it
// cannot see read as not existing.
func (c *Catalog) CheckChannels(ctx context.Context, version int, caller domain.Caller, ids []string) ([]translation.CheckOut, error) {
	if err := translation.CheckVersion(domain.KindServiceChannel, version); err != nil {
		return nil, err
	}
	if len(ids) > connections.MaxCheck {
		return nil, domain.Invalid("ids", "at most %d ids may be checked at once, got %d", connections.MaxCheck, len(ids))
	}

	var errs domain.FieldErrors
	parsed := make([]uuid.UUID, 0, len(ids))
	for i, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs.AddAt("ids", i, "invalid id %q", raw)
			continue
		}
		parsed = append(parsed, id)
	}
	if err := errs.Err(); err != nil {
		return nil, c.fail("check channels", err)
	}

	var results []connections.CheckResult
	err := c.store.Read(ctx, func(u *memstore.UnitOfWork) error {
		var err error
		results, err = c.engine.Check(u, caller, parsed)
		return err
	})
	if err != nil {
		return nil, c.fail("check channels", err)
	}
	return translation.CheckItems(results), nil
}
