package memstore

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/MrSnakeDoc/catalog/internal/domain"
)

type SourceRepository struct {
	db *memdb.Txn
}

// ExternalSource returns the mapping registered by caller for sourceID, or an
// EntityNotFound error.
func (r *SourceRepository) ExternalSource(kind domain.EntityKind, caller, sourceID string) (*domain.ExternalSource, error) {
	raw, err := r.db.First(SourceTable, PK, string(kind), caller, sourceID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.NotFound(kind, sourceID)
	}
	src := *raw.(*domain.ExternalSource)
	return &src, nil
}

// SourcesOfRoot lists every source id mapped to a root.
func (r *SourceRepository) SourcesOfRoot(rootID uuid.UUID) ([]*domain.ExternalSource, error) {
	iter, err := r.db.Get(SourceTable, "root", rootID)
	if err != nil {
		return nil, err
	}

	list := []*domain.ExternalSource{}
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		src := *raw.(*domain.ExternalSource)
		list = append(list, &src)
	}
	return list, nil
}

// InsertExternalSource registers a mapping. Registering the same source id for
// the same root again succeeds without change; for another root it fails with
// ExternalSourceConflict.
func (r *SourceRepository) InsertExternalSource(src *domain.ExternalSource) error {
	raw, err := r.db.First(SourceTable, PK, string(src.Kind), src.Caller, src.SourceID)
	if err != nil {
		return err
	}
	if raw != nil {
		if raw.(*domain.ExternalSource).RootID == src.RootID {
			return nil
		}
		return domain.SourceConflict(src.Kind, src.SourceID)
	}

	stored := *src
	if err := r.db.Insert(SourceTable, &stored); err != nil {
		return fmt.Errorf("insert external source: %w", err)
	}
	return nil
}
