package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/logger"
	"github.com/MrSnakeDoc/catalog/internal/postal"
	"github.com/MrSnakeDoc/catalog/internal/query"
	"github.com/MrSnakeDoc/catalog/internal/sources/reference"
	"github.com/MrSnakeDoc/catalog/internal/store/memstore"
	"github.com/MrSnakeDoc/catalog/internal/translation"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
	"github.com/MrSnakeDoc/catalog/internal/versioning"
)

var (
	ownOrg   = uuid.MustParse("0b9a2e4c-7d3f-4f60-8d51-2f7f9d0c6a01")
	otherOrg = uuid.MustParse("9c1f6e2a-45b7-4c1e-a0e4-3b8f2d7a9e02")

	editor   = domain.Caller{UserName: "editor", Organizations: []uuid.UUID{ownOrg}}
	outsider = domain.Caller{UserName: "outsider", Organizations: []uuid.UUID{otherOrg}}
	asti     = domain.Caller{UserName: "asti-sync", Organizations: []uuid.UUID{ownOrg}, ASTI: true}
)

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	data, err := reference.LoadDefault()
	require.NoError(t, err)
	types, err := typecache.New(data.Taxonomy)
	require.NoError(t, err)
	store, err := memstore.New()
	require.NoError(t, err)
	lookup := postal.New(data.PostalCodes, data.Municipalities, nil, logger.NewNop())
	return New(store, types, lookup, logger.NewNop())
}

func webPage(sourceID string, visible bool) *translation.ChannelIn {
	return &translation.ChannelIn{
		Common: translation.Common{
			SourceID:       sourceID,
			OrganizationID: ownOrg.String(),
			Names:          []translation.LanguageItem{{Language: "fi", Value: "Verkkosivu"}, {Language: "sv", Value: "Webbsida"}},
		},
		IsVisibleForAll: visible,
		URLs:            []translation.LanguageItem{{Language: "fi", Value: "https://palvelu.fi"}},
		Accessibility:   []translation.AccessibilityDTO{{Language: "fi", Level: "FullyCompliant"}},
	}
}

func service(sourceID string) *translation.EntityIn {
	return &translation.EntityIn{Common: translation.Common{
		SourceID:       sourceID,
		OrganizationID: ownOrg.String(),
		Names:          []translation.LanguageItem{{Language: "fi", Value: "Neuvonta"}},
	}}
}

func rootID(t *testing.T, id string) uuid.UUID {
	t.Helper()
	u, err := uuid.Parse(id)
	require.NoError(t, err)
	return u
}

// statuses returns the language statuses of every version of a root, by sequence.
func statuses(t *testing.T, c *Catalog, root uuid.UUID) map[int]map[string]domain.PublishingStatus {
	t.Helper()
	out := make(map[int]map[string]domain.PublishingStatus)
	require.NoError(t, c.store.Read(context.Background(), func(u *memstore.UnitOfWork) error {
		versions, err := u.VersionsOfRoot(root)
		if err != nil {
			return err
		}
		for _, v := range versions {
			langs, err := u.Languages(v.ID)
			if err != nil {
				return err
			}
			out[v.Sequence] = make(map[string]domain.PublishingStatus)
			for _, l := range langs {
				out[v.Sequence][l.Language] = c.types.Status(l.StatusID)
			}
		}
		return nil
	}))
	return out
}

func TestChannelLifecycle(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	created, err := c.CreateChannel(ctx, 11, editor, domain.ChannelWebPage, webPage("web-1", true))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusDraft), created.PublishingStatus)
	assert.Equal(t, "web-1", created.SourceID)
	id := rootID(t, created.ID)

	_, err = c.GetChannel(ctx, 11, editor, Ref{ID: id}, versioning.PolicyPublished)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound, "drafts are not published")

	out, err := c.Publish(ctx, 11, editor, domain.KindServiceChannel, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fi", "sv"}, out.Languages)

	published, err := c.GetChannel(ctx, 11, editor, Ref{ID: id}, versioning.PolicyPublished)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPublished), published.PublishingStatus)

	updated, err := c.UpdateChannel(ctx, 11, editor, Ref{SourceID: "web-1"}, webPage("", true))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusModified), updated.PublishingStatus)
	assert.Equal(t, "web-1", updated.SourceID)

	_, err = c.Publish(ctx, 11, editor, domain.KindServiceChannel, id)
	require.NoError(t, err)

	got := statuses(t, c, id)
	assert.Equal(t, domain.StatusOldPublished, got[1]["fi"])
	assert.Equal(t, domain.StatusOldPublished, got[1]["sv"])
	assert.Equal(t, domain.StatusPublished, got[2]["fi"])
	assert.Equal(t, domain.StatusPublished, got[2]["sv"])

	_, err = c.Archive(ctx, 11, editor, domain.KindServiceChannel, id)
	require.NoError(t, err)
	_, err = c.GetChannel(ctx, 11, editor, Ref{ID: id}, versioning.PolicyLatestActive)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestCreatePublishedInOneStep(t *testing.T) {
	c := newCatalog(t)
	in := service("svc-1")
	in.PublishingStatus = string(domain.StatusPublished)

	out, err := c.CreateEntity(context.Background(), 11, editor, domain.KindService, in)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPublished), out.PublishingStatus)
	require.Len(t, out.LanguageAvailabilities, 1)
	assert.NotNil(t, out.LanguageAvailabilities[0].PublishedAt)
}

func TestUpdateUsesStoredChannelType(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	created, err := c.CreateChannel(ctx, 11, editor, domain.ChannelWebPage, webPage("web-1", true))
	require.NoError(t, err)

	phone := &translation.ChannelIn{
		Common: webPage("", true).Common,
		PhoneNumbers: []translation.PhoneDTO{
			{Number: "0101234", Language: "fi", Type: "Phone", ServiceChargeType: "Charged"},
		},
	}
	_, err = c.UpdateChannel(ctx, 11, editor, Ref{ID: rootID(t, created.ID)}, phone)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOlderVersionUpdateKeepsNewerFields(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	created, err := c.CreateChannel(ctx, 11, editor, domain.ChannelWebPage, webPage("web-1", true))
	require.NoError(t, err)
	id := rootID(t, created.ID)

	// accessibility classifications do not exist in v8
	older := webPage("", true)
	older.Accessibility = nil
	older.Names = []translation.LanguageItem{{Language: "fi", Value: "Uusi nimi"}}
	_, err = c.UpdateChannel(ctx, 8, editor, Ref{ID: id}, older)
	require.NoError(t, err)

	got, err := c.GetChannel(ctx, 11, editor, Ref{ID: id}, versioning.PolicyLatest)
	require.NoError(t, err)
	assert.Equal(t, "Uusi nimi", got.Names[0].Value)
	assert.Equal(t, []translation.AccessibilityDTO{{Language: "fi", Level: "FullyCompliant"}}, got.Accessibility)

	// a v11 update that omits them does clear them
	current := webPage("", true)
	current.Accessibility = nil
	_, err = c.UpdateChannel(ctx, 11, editor, Ref{ID: id}, current)
	require.NoError(t, err)
	got, err = c.GetChannel(ctx, 11, editor, Ref{ID: id}, versioning.PolicyLatest)
	require.NoError(t, err)
	assert.Empty(t, got.Accessibility)
}

func TestOlderVersionUpdateKeepsAreas(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	in := service("svc-1")
	in.AreaType = "AreaType"
	in.Areas = []translation.AreaDTO{{Type: "Municipality", AreaCodes: []string{"049", "091"}}}
	created, err := c.CreateEntity(ctx, 11, editor, domain.KindService, in)
	require.NoError(t, err)

	// areas were added in v8
	_, err = c.UpdateEntity(ctx, 7, editor, domain.KindService, Ref{ID: rootID(t, created.ID)}, service(""))
	require.NoError(t, err)

	got, err := c.GetEntity(ctx, 11, editor, domain.KindService, Ref{SourceID: "svc-1"}, versioning.PolicyLatest)
	require.NoError(t, err)
	assert.Equal(t, "AreaType", got.AreaType)
	assert.Equal(t, []translation.AreaDTO{{Type: "Municipality", AreaCodes: []string{"049", "091"}}}, got.Areas)
	require.Len(t, got.LanguageAvailabilities, 1)
}

func TestUpdateUnknownEntity(t *testing.T) {
	c := newCatalog(t)

	_, err := c.UpdateEntity(context.Background(), 11, editor, domain.KindService, Ref{ID: uuid.New()}, service(""))
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestSourceIDConflict(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.CreateChannel(ctx, 11, editor, domain.ChannelWebPage, webPage("dup", true))
	require.NoError(t, err)

	_, err = c.CreateChannel(ctx, 11, editor, domain.ChannelWebPage, webPage("dup", true))
	assert.ErrorIs(t, err, domain.ErrExternalSourceConflict)

	// source ids are scoped per caller
	other := outsider
	in := webPage("dup", true)
	_, err = c.CreateChannel(ctx, 11, other, domain.ChannelWebPage, in)
	assert.NoError(t, err)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats[memstore.RootTable], "the conflicting write left nothing behind")
}

func TestChannelVersionFloor(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	created, err := c.CreateChannel(ctx, 11, editor, domain.ChannelWebPage, webPage("", true))
	require.NoError(t, err)
	id := rootID(t, created.ID)

	_, err = c.GetChannel(ctx, 6, editor, Ref{ID: id}, versioning.PolicyLatest)
	assert.ErrorIs(t, err, domain.ErrUnsupportedVersion)

	v8, err := c.GetChannel(ctx, 8, editor, Ref{ID: id}, versioning.PolicyLatest)
	require.NoError(t, err)
	assert.Nil(t, v8.Accessibility)
	assert.Nil(t, v8.Modified)
	assert.Nil(t, v8.LanguageAvailabilities)
}

func TestAnonymousWritesRejected(t *testing.T) {
	c := newCatalog(t)

	_, err := c.CreateEntity(context.Background(), 11, domain.Caller{}, domain.KindService, service(""))
	assert.ErrorIs(t, err, domain.ErrRelationNotFound)

	_, err = c.GetEntity(context.Background(), 11, domain.Caller{}, domain.KindService, Ref{SourceID: "x"}, versioning.PolicyLatest)
	assert.ErrorIs(t, err, domain.ErrRelationNotFound)
}

func TestConnections(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	svc, err := c.CreateEntity(ctx, 11, editor, domain.KindService, service("svc-1"))
	require.NoError(t, err)
	shared, err := c.CreateChannel(ctx, 11, editor, domain.ChannelWebPage, webPage("shared", true))
	require.NoError(t, err)
	private, err := c.CreateChannel(ctx, 11, editor, domain.ChannelWebPage, webPage("private", false))
	require.NoError(t, err)
	serviceID := rootID(t, svc.ID)

	t.Run("duplicates rejected", func(t *testing.T) {
		_, err := c.ConnectChannels(ctx, 11, editor, serviceID, &translation.ConnectionsIn{Relations: []translation.RelationIn{
			{ID: shared.ID},
			{SourceID: "shared"},
		}}, false)
		require.ErrorIs(t, err, domain.ErrValidation)

		var derr *domain.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "relations", derr.Field)
	})

	t.Run("saved and projected", func(t *testing.T) {
		res, err := c.ConnectChannels(ctx, 11, editor, serviceID, &translation.ConnectionsIn{Relations: []translation.RelationIn{
			{ID: shared.ID},
			{SourceID: "private"},
			{SourceID: "unknown"},
		}}, false)
		require.NoError(t, err)
		assert.Len(t, res.Saved, 2)
		assert.Equal(t, []translation.UnresolvedOut{{Index: 2, SourceID: "unknown"}}, res.Unresolved)

		out, err := c.GetEntity(ctx, 11, editor, domain.KindService, Ref{ID: serviceID}, versioning.PolicyLatest)
		require.NoError(t, err)
		assert.Len(t, out.ServiceChannels, 2)

		ch, err := c.GetChannel(ctx, 11, editor, Ref{ID: rootID(t, shared.ID)}, versioning.PolicyLatest)
		require.NoError(t, err)
		require.Len(t, ch.Services, 1)
		assert.Equal(t, svc.ID, ch.Services[0].ServiceID)
	})

	t.Run("strict fails on unknown counterpart", func(t *testing.T) {
		_, err := c.ConnectChannels(ctx, 11, editor, serviceID, &translation.ConnectionsIn{Relations: []translation.RelationIn{
			{SourceID: "unknown"},
		}}, true)
		assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	})

	t.Run("visibility check", func(t *testing.T) {
		mine, err := c.CheckChannels(ctx, 11, editor, []string{shared.ID, private.ID})
		require.NoError(t, err)
		assert.Equal(t, []translation.CheckOut{{ID: shared.ID, Exists: true}, {ID: private.ID, Exists: true}}, mine)

		theirs, err := c.CheckChannels(ctx, 11, outsider, []string{shared.ID, private.ID})
		require.NoError(t, err)
		assert.Equal(t, []translation.CheckOut{{ID: shared.ID, Exists: true}, {ID: private.ID, Exists: false}}, theirs)

		_, err = c.CheckChannels(ctx, 11, editor, []string{"nope"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("asti connections survive a user replace", func(t *testing.T) {
		_, err := c.ConnectChannels(ctx, 11, asti, serviceID, &translation.ConnectionsIn{Relations: []translation.RelationIn{
			{ID: shared.ID, IsASTIConnection: true},
		}}, false)
		require.NoError(t, err)

		res, err := c.ConnectChannels(ctx, 11, editor, serviceID, &translation.ConnectionsIn{Relations: []translation.RelationIn{
			{ID: private.ID},
		}}, false)
		require.NoError(t, err)
		assert.Empty(t, res.Removed)

		out, err := c.GetEntity(ctx, 11, editor, domain.KindService, Ref{ID: serviceID}, versioning.PolicyLatest)
		require.NoError(t, err)
		require.Len(t, out.ServiceChannels, 2)
		for _, sc := range out.ServiceChannels {
			assert.Equal(t, sc.ServiceChannelID == shared.ID, sc.IsASTIConnection)
		}
	})

	t.Run("delete all", func(t *testing.T) {
		res, err := c.ConnectChannels(ctx, 11, editor, serviceID, &translation.ConnectionsIn{DeleteAllChannelRelations: true}, false)
		require.NoError(t, err)
		assert.Len(t, res.Removed, 2)
	})
}

func TestListEntities(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		in := service("")
		in.PublishingStatus = string(domain.StatusPublished)
		_, err := c.CreateEntity(ctx, 11, editor, domain.KindService, in)
		require.NoError(t, err)
	}
	_, err := c.CreateEntity(ctx, 11, editor, domain.KindService, service(""))
	require.NoError(t, err)

	page, err := c.ListEntities(ctx, 11, editor, domain.KindService, query.Filter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount, "only published services are listed by default")
	assert.Equal(t, 2, page.PageCount)
	assert.Len(t, page.ItemList, 2)

	all, err := c.ListEntities(ctx, 11, editor, domain.KindService, query.Filter{Policy: versioning.PolicyLatest})
	require.NoError(t, err)
	assert.Equal(t, 4, all.TotalCount)

	_, err = c.ListEntities(ctx, 11, editor, domain.KindService, query.Filter{PageSize: 101})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = c.ListEntities(ctx, 11, editor, domain.KindServiceChannel, query.Filter{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWithdraw(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	in := service("svc")
	in.PublishingStatus = string(domain.StatusPublished)
	created, err := c.CreateEntity(ctx, 11, editor, domain.KindService, in)
	require.NoError(t, err)
	id := rootID(t, created.ID)

	_, err = c.Withdraw(ctx, 11, editor, domain.KindService, id)
	require.NoError(t, err)

	_, err = c.GetEntity(ctx, 11, editor, domain.KindService, Ref{ID: id}, versioning.PolicyPublished)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	latest, err := c.GetEntity(ctx, 11, editor, domain.KindService, Ref{SourceID: "svc"}, versioning.PolicyLatest)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusModified), latest.PublishingStatus)
}
