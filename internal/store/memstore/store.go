// Package memstore is the transactional entity store of the catalog, built on
// go-memdb. Every operation runs inside a unit of work: a read snapshot or a
// single write transaction that commits all or nothing.
package memstore

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
)

// Store owns the in-memory database.
type Store struct {
	db *memdb.MemDB
}

// New creates an empty store.
func New() (*Store, error) {
	db, err := memdb.NewMemDB(Schema())
	if err != nil {
		return nil, fmt.Errorf("failed to create memdb: %w", err)
	}
	return &Store{db: db}, nil
}

// Read runs fn against a consistent snapshot.
func (s *Store) Read(ctx context.Context, fn func(*UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	txn := s.db.Txn(false)
	defer txn.Abort()

	return fn(newUnitOfWork(txn))
}

// Write runs fn inside one write transaction. Any error returned by fn, or a
// context cancelled before commit, discards every change made by fn.
// Write transactions are serialized by memdb.
func (s *Store) Write(ctx context.Context, fn func(*UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	txn := s.db.Txn(true)
	defer txn.Abort() // no-op after Commit

	if err := fn(newUnitOfWork(txn)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

// Stats reports row counts per table.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int)
	err := s.Read(ctx, func(u *UnitOfWork) error {
		for _, table := range []string{RootTable, VersionTable, LanguageTable, ConnectionTable, SourceTable} {
			n, err := count(u.txn, table)
			if err != nil {
				return err
			}
			out[table] = n
		}
		return nil
	})
	return out, err
}

// UnitOfWork groups the per-entity repositories over one transaction. The
// repository methods are promoted so callers can depend on small interfaces.
type UnitOfWork struct {
	txn *memdb.Txn

	*RootRepository
	*VersionRepository
	*LanguageRepository
	*ConnectionRepository
	*SourceRepository
}

func newUnitOfWork(txn *memdb.Txn) *UnitOfWork {
	return &UnitOfWork{
		txn:                  txn,
		RootRepository:       &RootRepository{db: txn},
		VersionRepository:    &VersionRepository{db: txn},
		LanguageRepository:   &LanguageRepository{db: txn},
		ConnectionRepository: &ConnectionRepository{db: txn},
		SourceRepository:     &SourceRepository{db: txn},
	}
}

func count(txn *memdb.Txn, table string) (int, error) {
	iter, err := txn.Get(table, PK)
	if err != nil {
		return 0, err
	}
	n := 0
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		n++
	}
	return n, nil
}
