package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind names the logical entity a Root stands for.
type EntityKind string

const (
	KindOrganization      EntityKind = "Organization"
	KindService           EntityKind = "Service"
	KindServiceChannel    EntityKind = "ServiceChannel"
	KindServiceCollection EntityKind = "ServiceCollection"
)

// EntityKinds lists every kind the catalog stores.
var EntityKinds = []EntityKind{KindOrganization, KindService, KindServiceChannel, KindServiceCollection}

// ParseEntityKind returns the kind matching s, or false.
func ParseEntityKind(s string) (EntityKind, bool) {
	for _, k := range EntityKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Root is the stable identity of one logical entity across all of its versions.
// It is immutable once created.
type Root struct {
	ID        uuid.UUID
	Kind      EntityKind
	CreatedAt time.Time
	CreatedBy string
}

// Version is one snapshot of a Root's content.
//
// Versions reference their Root by id only. Language-level publishing state lives
// in LanguageAvailability rows keyed by the version id; StatusID is the aggregate
// of those rows and is recomputed whenever they change.
type Version struct {
	// --- Identity

	ID       uuid.UUID
	RootID   uuid.UUID
	Kind     EntityKind
	Sequence int // 1-based, monotonic per root

	// StatusID is the type-cache id of the aggregate PublishingStatus.
	StatusID uuid.UUID

	// --- Content

	// OrganizationID is the owning organization (parent organization for organizations).
	OrganizationID uuid.UUID

	// Names and Descriptions are keyed by language code.
	Names        map[string]string
	Descriptions map[string]string

	// AreaInformationTypeID is the type-cache id of the area information type
	// (whole country, limited to areas, ...). Nil when not given.
	AreaInformationTypeID uuid.UUID
	Areas                 []Area

	// Channel carries the type-specific payload; nil unless Kind is KindServiceChannel.
	Channel *ChannelContent

	// --- Audit

	Modified   time.Time
	ModifiedBy string
}

// Clone returns a deep copy. Stored versions are shared between transactions and
// must never be mutated in place.
func (v *Version) Clone() *Version {
	if v == nil {
		return nil
	}
	c := *v
	c.Names = cloneStrings(v.Names)
	c.Descriptions = cloneStrings(v.Descriptions)
	c.Areas = append([]Area(nil), v.Areas...)
	c.Channel = v.Channel.Clone()
	return &c
}

// Area is one geographical area a version applies to.
type Area struct {
	TypeID uuid.UUID // AreaType type-cache id
	Code   string
}

// LanguageAvailability is the publishing state of one language of one version.
type LanguageAvailability struct {
	VersionID   uuid.UUID
	Language    string
	StatusID    uuid.UUID
	Modified    time.Time
	ModifiedBy  string
	PublishedAt time.Time
}

// Clone returns a copy safe to modify.
func (l *LanguageAvailability) Clone() *LanguageAvailability {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// VersionDraft is the internal shape of a write request, produced by the
// translation layer and consumed by the version writer.
type VersionDraft struct {
	Kind   EntityKind
	RootID uuid.UUID // uuid.Nil creates a new root

	SourceID string

	OrganizationID        uuid.UUID
	Names                 map[string]string
	Descriptions          map[string]string
	AreaInformationTypeID uuid.UUID
	Areas                 []Area
	Channel               *ChannelContent

	// Languages lists the languages the version carries. When empty the union of
	// Names and Descriptions keys is used.
	Languages []string

	// Publish asks for all languages to be published once the version is stored.
	Publish bool

	// ExpectedSequence, when set, is the sequence the caller believes is the
	// current latest one; the write fails with a conflict if it is not.
	ExpectedSequence *int
}

// Caller is the already-authenticated identity behind a request.
type Caller struct {
	UserName      string
	Organizations []uuid.UUID
	// ASTI marks a system-of-record integration account.
	ASTI bool
}

// Identified reports whether the caller carries an identity usable for attribution.
func (c Caller) Identified() bool {
	return c.UserName != ""
}

// BelongsTo reports whether org is one of the caller's organizations.
func (c Caller) BelongsTo(org uuid.UUID) bool {
	for _, o := range c.Organizations {
		if o == org {
			return true
		}
	}
	return false
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
