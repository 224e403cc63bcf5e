package memstore

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/MrSnakeDoc/catalog/internal/domain"
)

type ConnectionRepository struct {
	db *memdb.Txn
}

// ConnectionsOfService lists the connections of a service root.
func (r *ConnectionRepository) ConnectionsOfService(serviceRootID uuid.UUID) ([]*domain.Connection, error) {
	return r.list("service", serviceRootID)
}

// ConnectionsOfChannel lists the connections of a channel root.
func (r *ConnectionRepository) ConnectionsOfChannel(channelRootID uuid.UUID) ([]*domain.Connection, error) {
	return r.list("channel", channelRootID)
}

// PutConnection inserts or replaces the connection of a (service, channel) pair.
func (r *ConnectionRepository) PutConnection(c *domain.Connection) error {
	if err := r.db.Insert(ConnectionTable, c.Clone()); err != nil {
		return fmt.Errorf("put connection: %w", err)
	}
	return nil
}

// DeleteConnection removes the connection of the pair; a missing pair is not an error.
func (r *ConnectionRepository) DeleteConnection(c *domain.Connection) error {
	raw, err := r.db.First(ConnectionTable, PK, c.ServiceRootID, c.ChannelRootID)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	if err := r.db.Delete(ConnectionTable, raw); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	return nil
}

func (r *ConnectionRepository) list(index string, id uuid.UUID) ([]*domain.Connection, error) {
	iter, err := r.db.Get(ConnectionTable, index, id)
	if err != nil {
		return nil, err
	}

	list := []*domain.Connection{}
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		list = append(list, raw.(*domain.Connection).Clone())
	}
	return list, nil
}
