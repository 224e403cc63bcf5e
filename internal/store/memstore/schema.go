package memstore

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

const (
	RootTable       = "root"
	VersionTable    = "version"
	LanguageTable   = "language_availability"
	ConnectionTable = "connection"
	SourceTable     = "external_source"

	PK = "id"
)

// Schema describes every table of the catalog.
func Schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			RootTable: {
				Name: RootTable,
				Indexes: map[string]*memdb.IndexSchema{
					PK: {
						Name:    PK,
						Unique:  true,
						Indexer: &uuidFieldIndex{Field: "ID"},
					},
					"kind": {
						Name:    "kind",
						Indexer: &memdb.StringFieldIndex{Field: "Kind"},
					},
				},
			},
			VersionTable: {
				Name: VersionTable,
				Indexes: map[string]*memdb.IndexSchema{
					PK: {
						Name:    PK,
						Unique:  true,
						Indexer: &uuidFieldIndex{Field: "ID"},
					},
					"root": {
						Name:    "root",
						Indexer: &uuidFieldIndex{Field: "RootID"},
					},
					"root_sequence": {
						Name:   "root_sequence",
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&uuidFieldIndex{Field: "RootID"},
								&memdb.IntFieldIndex{Field: "Sequence"},
							},
						},
					},
				},
			},
			LanguageTable: {
				Name: LanguageTable,
				Indexes: map[string]*memdb.IndexSchema{
					PK: {
						Name:   PK,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&uuidFieldIndex{Field: "VersionID"},
								&memdb.StringFieldIndex{Field: "Language"},
							},
						},
					},
					"version": {
						Name:    "version",
						Indexer: &uuidFieldIndex{Field: "VersionID"},
					},
				},
			},
			ConnectionTable: {
				Name: ConnectionTable,
				Indexes: map[string]*memdb.IndexSchema{
					PK: {
						Name:   PK,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&uuidFieldIndex{Field: "ServiceRootID"},
								&uuidFieldIndex{Field: "ChannelRootID"},
							},
						},
					},
					"service": {
						Name:    "service",
						Indexer: &uuidFieldIndex{Field: "ServiceRootID"},
					},
					"channel": {
						Name:    "channel",
						Indexer: &uuidFieldIndex{Field: "ChannelRootID"},
					},
				},
			},
			SourceTable: {
				Name: SourceTable,
				Indexes: map[string]*memdb.IndexSchema{
					PK: {
						Name:   PK,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "Kind"},
								&memdb.StringFieldIndex{Field: "Caller"},
								&memdb.StringFieldIndex{Field: "SourceID"},
							},
						},
					},
					"root": {
						Name:    "root",
						Indexer: &uuidFieldIndex{Field: "RootID"},
					},
				},
			},
		},
	}
}

// uuidFieldIndex indexes a uuid.UUID struct field by its 16 raw bytes.
// memdb.UUIDFieldIndex only understands the string form.
type uuidFieldIndex struct {
	Field string
}

func (u *uuidFieldIndex) FromObject(obj interface{}) (bool, []byte, error) {
	v := reflect.Indirect(reflect.ValueOf(obj))
	fv := v.FieldByName(u.Field)
	if !fv.IsValid() {
		return false, nil, fmt.Errorf("field '%s' for %#v is invalid", u.Field, obj)
	}

	id, ok := fv.Interface().(uuid.UUID)
	if !ok {
		return false, nil, fmt.Errorf("field '%s' is not a uuid.UUID", u.Field)
	}
	if id == uuid.Nil {
		return false, nil, nil
	}

	return true, bytesOf(id), nil
}

func (u *uuidFieldIndex) FromArgs(args ...interface{}) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("must provide only a single argument")
	}

	id, ok := args[0].(uuid.UUID)
	if !ok {
		return nil, fmt.Errorf("argument must be a uuid.UUID: %#v", args[0])
	}

	return bytesOf(id), nil
}

func bytesOf(id uuid.UUID) []byte {
	buf := make([]byte, len(id))
	copy(buf, id[:])
	return buf
}
