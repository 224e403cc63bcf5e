package catalog

import (
	"context"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/query"
	"github.com/MrSnakeDoc/catalog/internal/store/memstore"
	"github.com/MrSnakeDoc/catalog/internal/translation"
	"github.com/MrSnakeDoc/catalog/internal/versioning"
)

func checkEntityKind(kind domain.EntityKind) error {
	switch kind {
	case domain.KindOrganization, domain.KindService, domain.KindServiceCollection:
		return nil
	default:
		return domain.Invalid("kind", "%q is not an organization, service or service collection", kind)
	}
}

// CreateEntity stores a new organization, service or service collection.
func (c *Catalog) CreateEntity(ctx context.Context, version int, caller domain.Caller, kind domain.EntityKind, in *translation.EntityIn) (*translation.EntityOut, error) {
	if err := checkEntityKind(kind); err != nil {
		return nil, err
	}
	draft, err := c.translator.EntityToInternal(version, kind, in)
	if err != nil {
		return nil, c.fail("create "+string(kind), err)
	}

	snap, err := c.save(ctx, version, caller, draft)
	if err != nil {
		return nil, err
	}
	return c.translator.EntityToExternal(version, snap)
}

// UpdateEntity appends a version to an existing organization, service or
// service collection.
func (c *Catalog) UpdateEntity(ctx context.Context, version int, caller domain.Caller, kind domain.EntityKind, ref Ref, in *translation.EntityIn) (*translation.EntityOut, error) {
	if err := checkEntityKind(kind); err != nil {
		return nil, err
	}
	draft, err := c.translator.EntityToInternal(version, kind, in)
	if err != nil {
		return nil, c.fail("update "+string(kind), err)
	}

	var current *domain.Version
	err = c.store.Read(ctx, func(u *memstore.UnitOfWork) error {
		var err error
		current, err = c.lookup(u, caller, kind, ref, versioning.PolicyLatest)
		return err
	})
	if err != nil {
		return nil, c.fail("update "+string(kind), err)
	}

	translation.CarryHiddenFields(version, current, draft)
	draft.RootID = current.RootID
	if draft.SourceID == "" {
		draft.SourceID = ref.SourceID
	}
	seq := current.Sequence
	draft.ExpectedSequence = &seq

	snap, err := c.save(ctx, version, caller, draft)
	if err != nil {
		return nil, err
	}
	return c.translator.EntityToExternal(version, snap)
}

// GetEntity projects the version of an organization, service or service
// collection selected by policy.
func (c *Catalog) GetEntity(ctx context.Context, version int, caller domain.Caller, kind domain.EntityKind, ref Ref, policy versioning.Policy) (*translation.EntityOut, error) {
	if err := checkEntityKind(kind); err != nil {
		return nil, err
	}
	if err := translation.CheckVersion(kind, version); err != nil {
		return nil, err
	}

	var snap *translation.Snapshot
	err := c.store.Read(ctx, func(u *memstore.UnitOfWork) error {
		v, err := c.lookup(u, caller, kind, ref, policy)
		if err != nil {
			return err
		}
		snap, err = c.snapshot(u, caller, v)
		return err
	})
	if err != nil {
		return nil, c.fail("get "+string(kind), err)
	}
	return c.translator.EntityToExternal(version, snap)
}

// ListEntities returns one page of organizations, services or service
// collections.
func (c *Catalog) ListEntities(ctx context.Context, version int, caller domain.Caller, kind domain.EntityKind, filter query.Filter) (*translation.PageOut[translation.EntityOut], error) {
	if err := checkEntityKind(kind); err != nil {
		return nil, err
	}
	if err := translation.CheckVersion(kind, version); err != nil {
		return nil, err
	}
	filter.Kind = kind

	out := &translation.PageOut[translation.EntityOut]{}
	err := c.store.Read(ctx, func(u *memstore.UnitOfWork) error {
		page, err := c.query.List(u, filter)
		if err != nil {
			return err
		}
		fillPage(out, page)
		for _, v := range page.Items {
			snap, err := c.snapshot(u, caller, v)
			if err != nil {
				return err
			}
			item, err := c.translator.EntityToExternal(version, snap)
			if err != nil {
				return err
			}
			out.ItemList = append(out.ItemList, *item)
		}
		return nil
	})
	if err != nil {
		return nil, c.fail("list "+string(kind), err)
	}
	return out, nil
}
