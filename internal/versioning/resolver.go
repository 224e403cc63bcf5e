// Package versioning resolves which version of a root answers a request and
// writes new versions.
package versioning

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
)

// MaxIDList bounds batch id lookups.
const MaxIDList = 100

// Policy selects which version of a root a lookup returns.
type Policy string

const (
	// PolicyPublished picks the highest-sequence version with a published language.
	PolicyPublished Policy = "published"
	// PolicyLatest picks the highest-sequence version regardless of status.
	PolicyLatest Policy = "latest"
	// PolicyLatestActive picks the highest-sequence Draft, Modified or Published version.
	PolicyLatestActive Policy = "latestActive"
)

// ParsePolicy maps a query value to a Policy. Empty means published.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyPublished:
		return PolicyPublished, nil
	case PolicyLatest, PolicyLatestActive:
		return Policy(s), nil
	default:
		return "", domain.Invalid("status", "unknown version policy %q", s)
	}
}

// Reader is the storage surface lookups need.
type Reader interface {
	Root(id uuid.UUID) (*domain.Root, error)
	VersionsOfRoot(rootID uuid.UUID) ([]*domain.Version, error)
	Languages(versionID uuid.UUID) ([]*domain.LanguageAvailability, error)
	ExternalSource(kind domain.EntityKind, caller, sourceID string) (*domain.ExternalSource, error)
}

// Resolver answers root -> version lookups. It holds no state besides the type
// cache and is safe for concurrent use.
type Resolver struct {
	types *typecache.Cache
}

func NewResolver(types *typecache.Cache) *Resolver {
	return &Resolver{types: types}
}

// Resolve returns the version of rootID selected by policy. Ties cannot occur
// since sequences are unique per root; the highest sequence always wins.
func (r *Resolver) Resolve(tx Reader, kind domain.EntityKind, rootID uuid.UUID, policy Policy) (*domain.Version, error) {
	root, err := tx.Root(rootID)
	if err != nil {
		return nil, relabel(err, kind, rootID.String())
	}
	if kind != "" && root.Kind != kind {
		return nil, domain.NotFound(kind, rootID.String())
	}

	versions, err := tx.VersionsOfRoot(rootID)
	if err != nil {
		return nil, err
	}

	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		ok, err := r.matches(tx, v, policy)
		if err != nil {
			return nil, err
		}
		if ok {
			return v, nil
		}
	}

	return nil, domain.NotFound(root.Kind, rootID.String())
}

// ResolveBySource maps the caller's source id to its root, then resolves it.
func (r *Resolver) ResolveBySource(tx Reader, caller domain.Caller, kind domain.EntityKind, sourceID string, policy Policy) (*domain.Version, error) {
	if !caller.Identified() {
		return nil, domain.RelationNotFound("source id lookups require an identified caller")
	}

	src, err := tx.ExternalSource(kind, caller.UserName, sourceID)
	if err != nil {
		return nil, err
	}

	return r.Resolve(tx, kind, src.RootID, policy)
}

// ResolveMany resolves a batch of roots. Roots without a matching version are
// skipped; the result keeps input order and drops duplicates.
func (r *Resolver) ResolveMany(tx Reader, kind domain.EntityKind, rootIDs []uuid.UUID, policy Policy) ([]*domain.Version, error) {
	if len(rootIDs) > MaxIDList {
		return nil, domain.Invalid("guids", "at most %d ids may be requested at once, got %d", MaxIDList, len(rootIDs))
	}

	seen := make(map[uuid.UUID]bool, len(rootIDs))
	out := make([]*domain.Version, 0, len(rootIDs))
	for _, id := range rootIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		v, err := r.Resolve(tx, kind, id, policy)
		if err != nil {
			if domain.CodeOf(err) == domain.CodeEntityNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// LatestSequence returns the highest sequence of a root, 0 if it has none.
func LatestSequence(versions []*domain.Version) int {
	if len(versions) == 0 {
		return 0
	}
	return versions[len(versions)-1].Sequence
}

func (r *Resolver) matches(tx Reader, v *domain.Version, policy Policy) (bool, error) {
	switch policy {
	case PolicyLatest:
		return true, nil
	case PolicyLatestActive:
		return r.types.Status(v.StatusID).Active(), nil
	case PolicyPublished, "":
		langs, err := tx.Languages(v.ID)
		if err != nil {
			return false, err
		}
		published := r.types.StatusID(domain.StatusPublished)
		for _, l := range langs {
			if l.StatusID == published {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown version policy %q", policy)
	}
}

func relabel(err error, kind domain.EntityKind, id string) error {
	if domain.CodeOf(err) == domain.CodeEntityNotFound {
		return domain.NotFound(kind, id)
	}
	return err
}
