package catalog

import (
	"context"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/query"
	"github.com/MrSnakeDoc/catalog/internal/store/memstore"
	"github.com/MrSnakeDoc/catalog/internal/translation"
	"github.com/MrSnakeDoc/catalog/internal/versioning"
)

// CreateChannel stores a new channel of the given type.
func (c *Catalog) CreateChannel(ctx context.Context, version int, caller domain.Caller, channelType domain.ChannelType, in *translation.ChannelIn) (*translation.ChannelOut, error) {
	draft, err := c.translator.ChannelToInternal(ctx, version, channelType, in)
	if err != nil {
		return nil, c.fail("create channel", err)
	}

	snap, err := c.save(ctx, version, caller, draft)
	if err != nil {
		return nil, err
	}
	return c.translator.ChannelToExternal(version, snap)
}

// UpdateChannel appends a version to an existing channel. The request is
// translated with the stored channel type, whatever shape it has.
func (c *Catalog) UpdateChannel(ctx context.Context, version int, caller domain.Caller, ref Ref, in *translation.ChannelIn) (*translation.ChannelOut, error) {
	if err := translation.CheckVersion(domain.KindServiceChannel, version); err != nil {
		return nil, err
	}

	var current *domain.Version
	err := c.store.Read(ctx, func(u *memstore.UnitOfWork) error {
		var err error
		current, err = c.lookup(u, caller, domain.KindServiceChannel, ref, versioning.PolicyLatest)
		return err
	})
	if err != nil {
		return nil, c.fail("update channel", err)
	}

	channelType := c.types.ChannelType(current.Channel.TypeID)
	draft, err := c.translator.ChannelToInternal(ctx, version, channelType, in)
	if err != nil {
		return nil, c.fail("update channel", err)
	}
	translation.CarryHiddenFields(version, current, draft)
	draft.RootID = current.RootID
	if draft.SourceID == "" {
		draft.SourceID = ref.SourceID
	}
	// the translation ran outside the transaction; the write fails if the
	// root moved on since it was read
	seq := current.Sequence
	draft.ExpectedSequence = &seq

	snap, err := c.save(ctx, version, caller, draft)
	if err != nil {
		return nil, err
	}
	return c.translator.ChannelToExternal(version, snap)
}

// GetChannel projects the channel version selected by policy.
func (c *Catalog) GetChannel(ctx context.Context, version int, caller domain.Caller, ref Ref, policy versioning.Policy) (*translation.ChannelOut, error) {
	if err := translation.CheckVersion(domain.KindServiceChannel, version); err != nil {
		return nil, err
	}

	var snap *translation.Snapshot
	err := c.store.Read(ctx, func(u *memstore.UnitOfWork) error {
		v, err := c.lookup(u, caller, domain.KindServiceChannel, ref, policy)
		if err != nil {
			return err
		}
		snap, err = c.snapshot(u, caller, v)
		return err
	})
	if err != nil {
		return nil, c.fail("get channel", err)
	}
	return c.translator.ChannelToExternal(version, snap)
}

// ListChannels returns one page of channels.
func (c *Catalog) ListChannels(ctx context.Context, version int, caller domain.Caller, filter query.Filter) (*translation.PageOut[translation.ChannelOut], error) {
	if err := translation.CheckVersion(domain.KindServiceChannel, version); err != nil {
		return nil, err
	}
	filter.Kind = domain.KindServiceChannel

	out := &translation.PageOut[translation.ChannelOut]{}
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
			item, err := c.translator.ChannelToExternal(version, snap)
			if err != nil {
				return err
			}
			out.ItemList = append(out.ItemList, *item)
		}
		return nil
	})
	if err != nil {
		return nil, c.fail("list channels", err)
	}
	return out, nil
}

func fillPage[T any](out *translation.PageOut[T], page *query.Page) {
	out.PageNumber = page.Page
	out.PageSize = page.PageSize
	out.PageCount = page.PageCount
	out.TotalCount = page.TotalCount
	out.ItemList = make([]T, 0, len(page.Items))
}
