package memstore

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/MrSnakeDoc/catalog/internal/domain"
)

type VersionRepository struct {
	db *memdb.Txn
}

// Version returns a copy of the version with id, or an EntityNotFound error.
func (r *VersionRepository) Version(id uuid.UUID) (*domain.Version, error) {
	raw, err := r.db.First(VersionTable, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.NotFound("", id.String())
	}
	return raw.(*domain.Version).Clone(), nil
}

// VersionsOfRoot returns copies of every version of a root, ascending by sequence.
func (r *VersionRepository) VersionsOfRoot(rootID uuid.UUID) ([]*domain.Version, error) {
	iter, err := r.db.Get(VersionTable, "root", rootID)
	if err != nil {
		return nil, err
	}

	list := []*domain.Version{}
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		list = append(list, raw.(*domain.Version).Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Sequence < list[j].Sequence })
	return list, nil
}

// MaxSequence returns the highest sequence of a root, 0 when it has no versions.
// The int index is varint-encoded and does not sort numerically, so all
// versions are scanned.
func (r *VersionRepository) MaxSequence(rootID uuid.UUID) (int, error) {
	iter, err := r.db.Get(VersionTable, "root", rootID)
	if err != nil {
		return 0, err
	}

	max := 0
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		if s := raw.(*domain.Version).Sequence; s > max {
			max = s
		}
	}
	return max, nil
}

// InsertVersion stores a new version provided the root's current highest
// sequence still equals expectedMax and v.Sequence is expectedMax+1.
func (r *VersionRepository) InsertVersion(v *domain.Version, expectedMax int) error {
	current, err := r.MaxSequence(v.RootID)
	if err != nil {
		return err
	}
	if current != expectedMax {
		return domain.Conflict("root %s moved to sequence %d, expected %d", v.RootID, current, expectedMax)
	}
	if v.Sequence != expectedMax+1 {
		return fmt.Errorf("insert version: sequence %d does not follow %d", v.Sequence, expectedMax)
	}

	existing, err := r.db.First(VersionTable, PK, v.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.Conflict("version %s already exists", v.ID)
	}

	if err := r.db.Insert(VersionTable, v.Clone()); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

// UpdateVersion replaces mutable state (status, audit) of an existing version.
// Identity fields must not change.
func (r *VersionRepository) UpdateVersion(v *domain.Version) error {
	raw, err := r.db.First(VersionTable, PK, v.ID)
	if err != nil {
		return err
	}
	if raw == nil {
		return domain.NotFound("", v.ID.String())
	}

	stored := raw.(*domain.Version)
	if stored.RootID != v.RootID || stored.Sequence != v.Sequence || stored.Kind != v.Kind {
		return fmt.Errorf("update version %s: identity fields are immutable", v.ID)
	}

	if err := r.db.Insert(VersionTable, v.Clone()); err != nil {
		return fmt.Errorf("update version: %w", err)
	}
	return nil
}
