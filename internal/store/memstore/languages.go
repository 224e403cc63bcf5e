package memstore

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/MrSnakeDoc/catalog/internal/domain"
)

type LanguageRepository struct {
	db *memdb.Txn
}

// Languages returns copies of the language rows of a version, sorted by language.
func (r *LanguageRepository) Languages(versionID uuid.UUID) ([]*domain.LanguageAvailability, error) {
	iter, err := r.db.Get(LanguageTable, "version", versionID)
	if err != nil {
		return nil, err
	}

	list := []*domain.LanguageAvailability{}
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		list = append(list, raw.(*domain.LanguageAvailability).Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Language < list[j].Language })
	return list, nil
}

// PutLanguage inserts or replaces the row keyed by (VersionID, Language).
func (r *LanguageRepository) PutLanguage(l *domain.LanguageAvailability) error {
	if l.Language == "" {
		return fmt.Errorf("put language: empty language code")
	}
	if err := r.db.Insert(LanguageTable, l.Clone()); err != nil {
		return fmt.Errorf("put language: %w", err)
	}
	return nil
}
