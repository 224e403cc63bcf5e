package publishing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/sources/reference"
	"github.com/MrSnakeDoc/catalog/internal/store/memstore"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
	"github.com/MrSnakeDoc/catalog/internal/versioning"
)

var editor = domain.Caller{UserName: "editor"}

type fixture struct {
	types    *typecache.Cache
	store    *memstore.Store
	resolver *versioning.Resolver
	writer   *versioning.Writer
	machine  *Machine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	data, err := reference.LoadDefault()
	require.NoError(t, err)
	types, err := typecache.New(data.Taxonomy)
	require.NoError(t, err)
	store, err := memstore.New()
	require.NoError(t, err)
	resolver := versioning.NewResolver(types)
	return &fixture{
		types:    types,
		store:    store,
		resolver: resolver,
		writer:   versioning.NewWriter(types),
		machine:  NewMachine(types, resolver),
	}
}

func (f *fixture) version(t *testing.T, rootID uuid.UUID, draft *domain.VersionDraft) *domain.Version {
	t.Helper()
	draft.Kind = domain.KindService
	draft.RootID = rootID
	var v *domain.Version
	require.NoError(t, f.store.Write(context.Background(), func(u *memstore.UnitOfWork) error {
		w, err := f.writer.CreateVersion(u, editor, draft)
		if err != nil {
			return err
		}
		v = w.Version
		return nil
	}))
	return v
}

func (f *fixture) publish(versionID uuid.UUID) (*Outcome, error) {
	var out *Outcome
	err := f.store.Write(context.Background(), func(u *memstore.UnitOfWork) error {
		var err error
		out, err = f.machine.PublishAllAvailableLanguages(u, editor, versionID)
		return err
	})
	return out, err
}

func (f *fixture) statuses(t *testing.T, versionID uuid.UUID) map[string]domain.PublishingStatus {
	t.Helper()
	out := map[string]domain.PublishingStatus{}
	require.NoError(t, f.store.Read(context.Background(), func(u *memstore.UnitOfWork) error {
		langs, err := u.Languages(versionID)
		if err != nil {
			return err
		}
		for _, l := range langs {
			out[l.Language] = f.types.Status(l.StatusID)
		}
		return nil
	}))
	return out
}

func (f *fixture) aggregate(t *testing.T, versionID uuid.UUID) domain.PublishingStatus {
	t.Helper()
	var s domain.PublishingStatus
	require.NoError(t, f.store.Read(context.Background(), func(u *memstore.UnitOfWork) error {
		v, err := u.Version(versionID)
		if err != nil {
			return err
		}
		s = f.types.Status(v.StatusID)
		return nil
	}))
	return s
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.PublishingStatus
		want     bool
	}{
		{domain.StatusDraft, domain.StatusPublished, true},
		{domain.StatusDraft, domain.StatusModified, true},
		{domain.StatusModified, domain.StatusPublished, true},
		{domain.StatusPublished, domain.StatusModified, true},
		{domain.StatusPublished, domain.StatusDeleted, true},
		{domain.StatusPublished, domain.StatusOldPublished, false},
		{domain.StatusDeleted, domain.StatusPublished, false},
		{domain.StatusOldPublished, domain.StatusPublished, false},
		{domain.StatusModified, domain.StatusDraft, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPublishSupersedesSibling(t *testing.T) {
	f := newFixture(t)

	v1 := f.version(t, uuid.Nil, &domain.VersionDraft{Names: map[string]string{"fi": "Palvelu", "sv": "Tjänst"}})
	_, err := f.publish(v1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, f.aggregate(t, v1.ID))

	v2 := f.version(t, v1.RootID, &domain.VersionDraft{Names: map[string]string{"fi": "Palvelu 2", "sv": "Tjänst 2"}})
	out, err := f.publish(v2.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"fi", "sv"}, out.Published)
	assert.ElementsMatch(t, []string{"fi", "sv"}, out.Superseded[v1.ID])

	assert.Equal(t, map[string]domain.PublishingStatus{"fi": domain.StatusOldPublished, "sv": domain.StatusOldPublished}, f.statuses(t, v1.ID))
	assert.Equal(t, map[string]domain.PublishingStatus{"fi": domain.StatusPublished, "sv": domain.StatusPublished}, f.statuses(t, v2.ID))
	assert.Equal(t, domain.StatusOldPublished, f.aggregate(t, v1.ID))
	assert.Equal(t, domain.StatusPublished, f.aggregate(t, v2.ID))
}

func TestAtMostOnePublishedPerLanguage(t *testing.T) {
	f := newFixture(t)

	v1 := f.version(t, uuid.Nil, &domain.VersionDraft{Names: map[string]string{"fi": "A", "sv": "A"}})
	_, err := f.publish(v1.ID)
	require.NoError(t, err)

	// v2 only carries fi, so v1 keeps sv published
	v2 := f.version(t, v1.RootID, &domain.VersionDraft{Names: map[string]string{"fi": "B"}})
	_, err = f.publish(v2.ID)
	require.NoError(t, err)

	v3 := f.version(t, v1.RootID, &domain.VersionDraft{Names: map[string]string{"fi": "C", "sv": "C"}})
	_, err = f.publish(v3.ID)
	require.NoError(t, err)

	count := map[string]int{}
	for _, id := range []uuid.UUID{v1.ID, v2.ID, v3.ID} {
		for lang, s := range f.statuses(t, id) {
			if s == domain.StatusPublished {
				count[lang]++
			}
		}
	}
	assert.Equal(t, map[string]int{"fi": 1, "sv": 1}, count)
	assert.Equal(t, domain.StatusOldPublished, f.statuses(t, v1.ID)["sv"])
}

func TestPublishNonLatestIsConflict(t *testing.T) {
	f := newFixture(t)

	v1 := f.version(t, uuid.Nil, &domain.VersionDraft{Names: map[string]string{"fi": "A"}})
	f.version(t, v1.RootID, &domain.VersionDraft{Names: map[string]string{"fi": "B"}})

	_, err := f.publish(v1.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.StatusDraft, f.statuses(t, v1.ID)["fi"])
}

func TestPublishRequiresNames(t *testing.T) {
	f := newFixture(t)

	v := f.version(t, uuid.Nil, &domain.VersionDraft{
		Names:        map[string]string{"fi": "Palvelu"},
		Descriptions: map[string]string{"fi": "Kuvaus", "en": "Description only"},
	})

	_, err := f.publish(v.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, map[string]domain.PublishingStatus{"en": domain.StatusDraft, "fi": domain.StatusDraft}, f.statuses(t, v.ID))
}

type failingTx struct {
	Tx
	calls int
	after int
}

func (f *failingTx) PutLanguage(l *domain.LanguageAvailability) error {
	f.calls++
	if f.calls > f.after {
		return errors.New("storage failure")
	}
	return f.Tx.PutLanguage(l)
}

func TestPublishRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)

	v1 := f.version(t, uuid.Nil, &domain.VersionDraft{Names: map[string]string{"fi": "A"}})
	_, err := f.publish(v1.ID)
	require.NoError(t, err)
	v2 := f.version(t, v1.RootID, &domain.VersionDraft{Names: map[string]string{"fi": "B"}})

	// the sibling is superseded first, then the promotion fails
	err = f.store.Write(context.Background(), func(u *memstore.UnitOfWork) error {
		_, err := f.machine.PublishAllAvailableLanguages(&failingTx{Tx: u, after: 1}, editor, v2.ID)
		return err
	})
	require.Error(t, err)

	assert.Equal(t, domain.StatusPublished, f.statuses(t, v1.ID)["fi"])
	assert.Equal(t, domain.StatusModified, f.statuses(t, v2.ID)["fi"])
}

func TestSetLanguageStatus(t *testing.T) {
	f := newFixture(t)
	v := f.version(t, uuid.Nil, &domain.VersionDraft{Names: map[string]string{"fi": "A", "sv": "A"}})

	set := func(lang string, to domain.PublishingStatus) error {
		return f.store.Write(context.Background(), func(u *memstore.UnitOfWork) error {
			_, err := f.machine.SetLanguageStatus(u, editor, v.ID, lang, to)
			return err
		})
	}

	require.NoError(t, set("fi", domain.StatusPublished))
	assert.Equal(t, domain.StatusPublished, f.aggregate(t, v.ID))

	assert.ErrorIs(t, set("sv", domain.StatusOldPublished), domain.ErrValidation)
	assert.ErrorIs(t, set("en", domain.StatusPublished), domain.ErrValidation)

	require.NoError(t, set("fi", domain.StatusDeleted))
	assert.ErrorIs(t, set("fi", domain.StatusPublished), domain.ErrValidation, "deleted is terminal")
	assert.Equal(t, domain.StatusDraft, f.aggregate(t, v.ID))
}

func TestRootLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.version(t, uuid.Nil, &domain.VersionDraft{Names: map[string]string{"fi": "A"}})

	require.NoError(t, f.store.Write(ctx, func(u *memstore.UnitOfWork) error {
		_, err := f.machine.PublishRoot(u, editor, domain.KindService, v.RootID)
		return err
	}))
	assert.Equal(t, domain.StatusPublished, f.aggregate(t, v.ID))

	require.NoError(t, f.store.Write(ctx, func(u *memstore.UnitOfWork) error {
		_, err := f.machine.WithdrawRoot(u, editor, domain.KindService, v.RootID)
		return err
	}))
	assert.Equal(t, domain.StatusModified, f.aggregate(t, v.ID))

	require.NoError(t, f.store.Write(ctx, func(u *memstore.UnitOfWork) error {
		_, err := f.machine.ArchiveRoot(u, editor, domain.KindService, v.RootID)
		return err
	}))
	assert.Equal(t, domain.StatusDeleted, f.aggregate(t, v.ID))

	err := f.store.Read(ctx, func(u *memstore.UnitOfWork) error {
		_, err := f.resolver.Resolve(u, domain.KindService, v.RootID, versioning.PolicyLatestActive)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

type brokenRootTx struct {
	Tx
}

var errStorage = errors.New("storage failure")

func (brokenRootTx) Root(uuid.UUID) (*domain.Root, error) {
	return nil, errStorage
}

func TestArchiveRootErrors(t *testing.T) {
	f := newFixture(t)
	v := f.version(t, uuid.Nil, &domain.VersionDraft{Names: map[string]string{"fi": "A"}})

	archive := func(wrap func(Tx) Tx, kind domain.EntityKind, rootID uuid.UUID) error {
		return f.store.Write(context.Background(), func(u *memstore.UnitOfWork) error {
			_, err := f.machine.ArchiveRoot(wrap(u), editor, kind, rootID)
			return err
		})
	}
	same := func(tx Tx) Tx { return tx }

	assert.ErrorIs(t, archive(same, domain.KindService, uuid.New()), domain.ErrEntityNotFound)
	assert.ErrorIs(t, archive(same, domain.KindOrganization, v.RootID), domain.ErrEntityNotFound)

	err := archive(func(tx Tx) Tx { return brokenRootTx{Tx: tx} }, domain.KindService, v.RootID)
	assert.ErrorIs(t, err, errStorage)
	assert.NotErrorIs(t, err, domain.ErrEntityNotFound)
	assert.Equal(t, domain.StatusDraft, f.aggregate(t, v.ID))
}

func TestPublishingRequiresCaller(t *testing.T) {
	f := newFixture(t)
	v := f.version(t, uuid.Nil, &domain.VersionDraft{Names: map[string]string{"fi": "A"}})

	err := f.store.Write(context.Background(), func(u *memstore.UnitOfWork) error {
		_, err := f.machine.PublishAllAvailableLanguages(u, domain.Caller{}, v.ID)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrRelationNotFound)
}
