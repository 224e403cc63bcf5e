package memstore

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/MrSnakeDoc/catalog/internal/domain"
)

type RootRepository struct {
	db *memdb.Txn // called "db" not to provoke transaction semantics
}

// Root returns the root with id, or an EntityNotFound error.
func (r *RootRepository) Root(id uuid.UUID) (*domain.Root, error) {
	raw, err := r.db.First(RootTable, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.NotFound("", id.String())
	}
	root := *raw.(*domain.Root)
	return &root, nil
}

// InsertRoot stores a new root. Roots are immutable, so an existing id fails.
func (r *RootRepository) InsertRoot(root *domain.Root) error {
	existing, err := r.db.First(RootTable, PK, root.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.Conflict("root %s already exists", root.ID)
	}

	stored := *root
	if err := r.db.Insert(RootTable, &stored); err != nil {
		return fmt.Errorf("insert root: %w", err)
	}
	return nil
}

// RootsByKind lists every root of kind in id order.
func (r *RootRepository) RootsByKind(kind domain.EntityKind) ([]*domain.Root, error) {
	iter, err := r.db.Get(RootTable, "kind", string(kind))
	if err != nil {
		return nil, err
	}

	list := []*domain.Root{}
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		root := *raw.(*domain.Root)
		list = append(list, &root)
	}
	return list, nil
}
