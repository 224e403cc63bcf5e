// Package publishing drives the per-language publishing lifecycle of versions.
package publishing

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
	"github.com/MrSnakeDoc/catalog/internal/versioning"
)

// transitions lists the statuses a language may move to by request.
// OldPublished is only ever reached through supersession.
var transitions = map[domain.PublishingStatus][]domain.PublishingStatus{
	domain.StatusDraft:     {domain.StatusModified, domain.StatusPublished, domain.StatusDeleted},
	domain.StatusModified:  {domain.StatusPublished, domain.StatusDeleted},
	domain.StatusPublished: {domain.StatusModified, domain.StatusDeleted},
}

// CanTransition reports whether a language may go from one status to another.
func CanTransition(from, to domain.PublishingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Tx is the storage surface the machine needs.
type Tx interface {
	versioning.Reader
	Version(id uuid.UUID) (*domain.Version, error)
	UpdateVersion(v *domain.Version) error
	PutLanguage(l *domain.LanguageAvailability) error
}

// Machine applies status changes. All changes of one call are made through tx,
// so they commit or roll back together with the caller's unit of work.
type Machine struct {
	types    *typecache.Cache
	resolver *versioning.Resolver
	now      func() time.Time
}

func NewMachine(types *typecache.Cache, resolver *versioning.Resolver) *Machine {
	return &Machine{types: types, resolver: resolver, now: time.Now}
}

// Outcome describes what a publish call changed.
type Outcome struct {
	VersionID  uuid.UUID
	Published  []string
	Superseded map[uuid.UUID][]string // sibling version -> languages moved to OldPublished
}

// PublishAllAvailableLanguages publishes every Draft or Modified language of a
// version. The version must be the latest of its root, and every language must
// have a name. Any Published sibling of a promoted language becomes
// OldPublished in the same transaction.
func (m *Machine) PublishAllAvailableLanguages(tx Tx, caller domain.Caller, versionID uuid.UUID) (*Outcome, error) {
	if !caller.Identified() {
		return nil, domain.RelationNotFound("publishing requires an identified caller")
	}

	v, versions, err := m.loadLatest(tx, versionID)
	if err != nil {
		return nil, err
	}

	langs, err := tx.Languages(v.ID)
	if err != nil {
		return nil, err
	}

	var candidates []*domain.LanguageAvailability
	for _, l := range langs {
		s := m.types.Status(l.StatusID)
		if s == domain.StatusDraft || s == domain.StatusModified {
			candidates = append(candidates, l)
		}
	}

	out := &Outcome{VersionID: v.ID, Superseded: map[uuid.UUID][]string{}}
	if len(candidates) == 0 {
		return out, nil
	}

	if err := requireContent(v, candidates); err != nil {
		return nil, err
	}

	if err := m.promote(tx, caller, v, versions, langs, candidates, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetLanguageStatus moves one language of a version to target. Publishing a
// language follows the same rules as PublishAllAvailableLanguages.
func (m *Machine) SetLanguageStatus(tx Tx, caller domain.Caller, versionID uuid.UUID, language string, target domain.PublishingStatus) (*Outcome, error) {
	if !caller.Identified() {
		return nil, domain.RelationNotFound("publishing requires an identified caller")
	}
	if target == domain.StatusOldPublished {
		return nil, domain.Invalid("publishingStatus", "%s cannot be requested", target)
	}

	v, versions, err := m.loadLatest(tx, versionID)
	if err != nil {
		return nil, err
	}

	langs, err := tx.Languages(v.ID)
	if err != nil {
		return nil, err
	}

	var row *domain.LanguageAvailability
	for _, l := range langs {
		if strings.EqualFold(l.Language, language) {
			row = l
		}
	}
	if row == nil {
		return nil, domain.Invalid("language", "version does not carry language %q", language)
	}

	out := &Outcome{VersionID: v.ID, Superseded: map[uuid.UUID][]string{}}
	from := m.types.Status(row.StatusID)
	if from == target {
		return out, nil
	}
	if !CanTransition(from, target) {
		return nil, domain.Invalid("publishingStatus", "cannot move %s from %s to %s", row.Language, from, target)
	}

	if target == domain.StatusPublished {
		candidates := []*domain.LanguageAvailability{row}
		if err := requireContent(v, candidates); err != nil {
			return nil, err
		}
		if err := m.promote(tx, caller, v, versions, langs, candidates, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	row.StatusID = m.types.StatusID(target)
	row.Modified = m.now().UTC()
	row.ModifiedBy = caller.UserName
	if err := tx.PutLanguage(row); err != nil {
		return nil, err
	}
	if err := m.recompute(tx, v, langs, caller); err != nil {
		return nil, err
	}
	return out, nil
}

// PublishRoot publishes the latest active version of a root.
func (m *Machine) PublishRoot(tx Tx, caller domain.Caller, kind domain.EntityKind, rootID uuid.UUID) (*Outcome, error) {
	v, err := m.resolver.Resolve(tx, kind, rootID, versioning.PolicyLatestActive)
	if err != nil {
		return nil, err
	}
	return m.PublishAllAvailableLanguages(tx, caller, v.ID)
}

// WithdrawRoot moves the published languages of a root back to Modified.
func (m *Machine) WithdrawRoot(tx Tx, caller domain.Caller, kind domain.EntityKind, rootID uuid.UUID) (*Outcome, error) {
	if !caller.Identified() {
		return nil, domain.RelationNotFound("publishing requires an identified caller")
	}

	v, err := m.resolver.Resolve(tx, kind, rootID, versioning.PolicyPublished)
	if err != nil {
		return nil, err
	}
	return m.moveAll(tx, caller, v, domain.StatusPublished, domain.StatusModified)
}

// ArchiveRoot marks every active language of every version of a root Deleted.
func (m *Machine) ArchiveRoot(tx Tx, caller domain.Caller, kind domain.EntityKind, rootID uuid.UUID) (*Outcome, error) {
	if !caller.Identified() {
		return nil, domain.RelationNotFound("publishing requires an identified caller")
	}

	root, err := tx.Root(rootID)
	if err != nil {
		if domain.CodeOf(err) == domain.CodeEntityNotFound {
			return nil, domain.NotFound(kind, rootID.String())
		}
		return nil, err
	}
	if root.Kind != kind {
		return nil, domain.NotFound(kind, rootID.String())
	}

	versions, err := tx.VersionsOfRoot(rootID)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Superseded: map[uuid.UUID][]string{}}
	for _, v := range versions {
		for _, from := range []domain.PublishingStatus{domain.StatusDraft, domain.StatusModified, domain.StatusPublished} {
			if _, err := m.moveAll(tx, caller, v, from, domain.StatusDeleted); err != nil {
				return nil, err
			}
		}
		out.VersionID = v.ID
	}
	return out, nil
}

func (m *Machine) loadLatest(tx Tx, versionID uuid.UUID) (*domain.Version, []*domain.Version, error) {
	v, err := tx.Version(versionID)
	if err != nil {
		return nil, nil, err
	}

	versions, err := tx.VersionsOfRoot(v.RootID)
	if err != nil {
		return nil, nil, err
	}
	if latest := versioning.LatestSequence(versions); v.Sequence != latest {
		return nil, nil, domain.Conflict("version %d of root %s is not the latest (latest is %d)", v.Sequence, v.RootID, latest)
	}
	return v, versions, nil
}

func (m *Machine) promote(tx Tx, caller domain.Caller, v *domain.Version, versions []*domain.Version, langs, candidates []*domain.LanguageAvailability, out *Outcome) error {
	now := m.now().UTC()
	published := m.types.StatusID(domain.StatusPublished)
	promoted := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		promoted[c.Language] = true
	}

	for _, sibling := range versions {
		if sibling.ID == v.ID {
			continue
		}
		siblingLangs, err := tx.Languages(sibling.ID)
		if err != nil {
			return err
		}

		touched := false
		for _, l := range siblingLangs {
			if !promoted[l.Language] || l.StatusID != published {
				continue
			}
			l.StatusID = m.types.StatusID(domain.StatusOldPublished)
			l.Modified = now
			l.ModifiedBy = caller.UserName
			if err := tx.PutLanguage(l); err != nil {
				return err
			}
			out.Superseded[sibling.ID] = append(out.Superseded[sibling.ID], l.Language)
			touched = true
		}
		if touched {
			if err := m.recompute(tx, sibling, siblingLangs, caller); err != nil {
				return err
			}
		}
	}

	for _, l := range langs {
		if !promoted[l.Language] {
			continue
		}
		l.StatusID = published
		l.Modified = now
		l.ModifiedBy = caller.UserName
		l.PublishedAt = now
		if err := tx.PutLanguage(l); err != nil {
			return err
		}
		out.Published = append(out.Published, l.Language)
	}
	sort.Strings(out.Published)

	return m.recompute(tx, v, langs, caller)
}

func (m *Machine) moveAll(tx Tx, caller domain.Caller, v *domain.Version, from, to domain.PublishingStatus) (*Outcome, error) {
	langs, err := tx.Languages(v.ID)
	if err != nil {
		return nil, err
	}

	out := &Outcome{VersionID: v.ID, Superseded: map[uuid.UUID][]string{}}
	now := m.now().UTC()
	fromID := m.types.StatusID(from)
	changed := false
	for _, l := range langs {
		if l.StatusID != fromID {
			continue
		}
		l.StatusID = m.types.StatusID(to)
		l.Modified = now
		l.ModifiedBy = caller.UserName
		if err := tx.PutLanguage(l); err != nil {
			return nil, err
		}
		changed = true
	}
	if !changed {
		return out, nil
	}
	return out, m.recompute(tx, v, langs, caller)
}

// recompute refreshes the aggregate status of v from its language rows.
func (m *Machine) recompute(tx Tx, v *domain.Version, langs []*domain.LanguageAvailability, caller domain.Caller) error {
	statuses := make([]domain.PublishingStatus, 0, len(langs))
	for _, l := range langs {
		statuses = append(statuses, m.types.Status(l.StatusID))
	}
	v.StatusID = m.types.StatusID(domain.AggregateStatus(statuses))
	v.Modified = m.now().UTC()
	v.ModifiedBy = caller.UserName
	return tx.UpdateVersion(v)
}

func requireContent(v *domain.Version, candidates []*domain.LanguageAvailability) error {
	var errs domain.FieldErrors
	for _, l := range candidates {
		if strings.TrimSpace(v.Names[l.Language]) == "" {
			errs.Add("names", "language %s has no name and cannot be published", l.Language)
		}
	}
	return errs.Err()
}
