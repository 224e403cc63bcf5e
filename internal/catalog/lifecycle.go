package catalog

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/logger"
	"github.com/MrSnakeDoc/catalog/internal/publishing"
	"github.com/MrSnakeDoc/catalog/internal/store/memstore"
	"github.com/MrSnakeDoc/catalog/internal/translation"
)

type transition func(tx publishing.Tx, caller domain.Caller, kind domain.EntityKind, rootID uuid.UUID) (*publishing.Outcome, error)

// Publish publishes every pending language of the latest active version.
func (c *Catalog) Publish(ctx context.Context, version int, caller domain.Caller, kind domain.EntityKind, rootID uuid.UUID) (*translation.PublishingOut, error) {
	return c.transition(ctx, "publish", version, caller, kind, rootID, c.machine.PublishRoot)
}

// Withdraw moves the published languages back to Modified.
func (c *Catalog) Withdraw(ctx context.Context, version int, caller domain.Caller, kind domain.EntityKind, rootID uuid.UUID) (*translation.PublishingOut, error) {
	return c.transition(ctx, "withdraw", version, caller, kind, rootID, c.machine.WithdrawRoot)
}

// Archive deletes every active language of every version.
func (c *Catalog) Archive(ctx context.Context, version int, caller domain.Caller, kind domain.EntityKind, rootID uuid.UUID) (*translation.PublishingOut, error) {
	return c.transition(ctx, "archive", version, caller, kind, rootID, c.machine.ArchiveRoot)
}

func (c *Catalog) transition(ctx context.Context, op string, version int, caller domain.Caller, kind domain.EntityKind, rootID uuid.UUID, fn transition) (*translation.PublishingOut, error) {
	if _, ok := domain.ParseEntityKind(string(kind)); !ok {
		return nil, domain.Invalid("kind", "unknown entity kind %q", kind)
	}
	if err := translation.CheckVersion(kind, version); err != nil {
		return nil, err
	}

	var outcome *publishing.Outcome
	err := c.store.Write(ctx, func(u *memstore.UnitOfWork) error {
		var err error
		outcome, err = fn(u, caller, kind, rootID)
		return err
	})
	if err != nil {
		return nil, c.fail(op+" "+string(kind), err,
			logger.Stringer("root_id", rootID),
			logger.String("caller", caller.UserName))
	}

	c.log.Info(op+" applied",
		logger.String("kind", string(kind)),
		logger.Stringer("root_id", rootID),
		logger.Stringer("version_id", outcome.VersionID),
		logger.Strings("languages", outcome.Published),
		logger.String("caller", caller.UserName),
		logger.Int("api_version", version))

	return publishingOut(rootID, outcome), nil
}

func publishingOut(rootID uuid.UUID, o *publishing.Outcome) *translation.PublishingOut {
	out := &translation.PublishingOut{ID: rootID.String(), Languages: o.Published}
	if o.VersionID != uuid.Nil {
		out.VersionID = o.VersionID.String()
	}
	if len(o.Superseded) > 0 {
		out.Superseded = make(map[string][]string, len(o.Superseded))
		for id, langs := range o.Superseded {
			sorted := append([]string(nil), langs...)
			sort.Strings(sorted)
			out.Superseded[id.String()] = sorted
		}
	}
	return out
}
