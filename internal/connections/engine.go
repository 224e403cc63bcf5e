// Package connections validates and applies service/channel relationship edits.
package connections

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/versioning"
)

// MaxCheck bounds Check requests.
const MaxCheck = 100

// Direction says which side of the relation the owner is.
type Direction int

const (
	// ServiceToChannels edits the channels of a service.
	ServiceToChannels Direction = iota
	// ChannelToServices edits the services of a channel.
	ChannelToServices
)

func (d Direction) ownerKind() domain.EntityKind {
	if d == ChannelToServices {
		return domain.KindServiceChannel
	}
	return domain.KindService
}

func (d Direction) counterpartKind() domain.EntityKind {
	if d == ChannelToServices {
		return domain.KindService
	}
	return domain.KindServiceChannel
}

// Relation is one requested connection. The counterpart is addressed either by
// root id or by the caller's source id, never both.
type Relation struct {
	ID       uuid.UUID
	SourceID string

	ASTI         bool
	ChargeTypeID uuid.UUID
	Descriptions map[string]string
	ServiceHours []domain.ServiceHour
	Contact      *domain.ContactDetails
}

// Options control how a request is applied.
type Options struct {
	Direction                 Direction
	DeleteAllChannelRelations bool
	DeleteAllServiceRelations bool
	// Replace removes existing connections the request does not name.
	Replace bool
	// Strict fails the whole request when any counterpart cannot be resolved.
	Strict bool
}

// Unresolved reports a relation whose counterpart was not found or not visible.
type Unresolved struct {
	Index    int
	ID       uuid.UUID
	SourceID string
}

// Result describes what was applied.
type Result struct {
	Saved      []*domain.Connection
	Removed    []*domain.Connection
	Unresolved []Unresolved
}

// Tx is the storage surface the engine needs.
type Tx interface {
	versioning.Reader
	ConnectionsOfService(serviceRootID uuid.UUID) ([]*domain.Connection, error)
	ConnectionsOfChannel(channelRootID uuid.UUID) ([]*domain.Connection, error)
	PutConnection(c *domain.Connection) error
	DeleteConnection(c *domain.Connection) error
}

type Engine struct {
	resolver *versioning.Resolver
	now      func() time.Time
}

func NewEngine(resolver *versioning.Resolver) *Engine {
	return &Engine{resolver: resolver, now: time.Now}
}

// Apply validates every relation before writing anything, then reconciles the
// owner's connections with the request.
func (e *Engine) Apply(tx Tx, caller domain.Caller, owner uuid.UUID, relations []Relation, opts Options) (*Result, error) {
	if !caller.Identified() {
		return nil, domain.RelationNotFound("connection edits require an identified caller")
	}

	deleteAll, err := validateFlags(relations, opts)
	if err != nil {
		return nil, err
	}
	if !deleteAll {
		if err := validateRelations(relations); err != nil {
			return nil, err
		}
	}

	ownerVersion, err := e.resolver.Resolve(tx, opts.Direction.ownerKind(), owner, versioning.PolicyLatestActive)
	if err != nil {
		return nil, err
	}
	if opts.Direction == ChannelToServices && !Visible(caller, ownerVersion) {
		return nil, domain.NotFound(domain.KindServiceChannel, owner.String())
	}

	existing, err := e.existing(tx, owner, opts.Direction)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if deleteAll {
		for _, c := range existing {
			if err := tx.DeleteConnection(c); err != nil {
				return nil, err
			}
			result.Removed = append(result.Removed, c)
		}
		return result, nil
	}

	resolved := make([]uuid.UUID, len(relations))
	seen := make(map[uuid.UUID]int, len(relations))
	for i, rel := range relations {
		id, ok, err := e.counterpart(tx, caller, rel, opts.Direction)
		if err != nil {
			return nil, err
		}
		if !ok {
			if opts.Strict {
				return nil, &domain.Error{
					Code:    domain.CodeEntityNotFound,
					Message: "relation counterpart not found",
					Entity:  opts.Direction.counterpartKind(),
					ID:      describe(rel),
					Field:   "relations",
					Index:   intPtr(i),
				}
			}
			result.Unresolved = append(result.Unresolved, Unresolved{Index: i, ID: rel.ID, SourceID: rel.SourceID})
			continue
		}
		// id and source id may name the same root
		if first, dup := seen[id]; dup {
			return nil, domain.InvalidAt("relations", i, "relation duplicates entry %d", first)
		}
		seen[id] = i
		resolved[i] = id
	}

	byCounterpart := make(map[uuid.UUID]*domain.Connection, len(existing))
	for _, c := range existing {
		byCounterpart[counterpartOf(c, opts.Direction)] = c
	}

	now := e.now().UTC()
	keep := make(map[uuid.UUID]bool, len(relations))
	for i, rel := range relations {
		id := resolved[i]
		if id == uuid.Nil {
			continue
		}
		keep[id] = true

		c := &domain.Connection{
			ChargeTypeID: rel.ChargeTypeID,
			Descriptions: rel.Descriptions,
			ServiceHours: rel.ServiceHours,
			Contact:      rel.Contact,
			Modified:     now,
			ModifiedBy:   caller.UserName,
		}
		if opts.Direction == ServiceToChannels {
			c.ServiceRootID, c.ChannelRootID = owner, id
		} else {
			c.ServiceRootID, c.ChannelRootID = id, owner
		}
		c.ASTI = astiMarker(caller, rel, byCounterpart[id])

		if err := tx.PutConnection(c); err != nil {
			return nil, err
		}
		result.Saved = append(result.Saved, c)
	}

	if opts.Replace {
		for id, c := range byCounterpart {
			if keep[id] {
				continue
			}
			if c.ASTI && !caller.ASTI {
				continue
			}
			if err := tx.DeleteConnection(c); err != nil {
				return nil, err
			}
			result.Removed = append(result.Removed, c)
		}
	}

	return result, nil
}

// CheckResult tells whether a channel is connectable by the caller.
type CheckResult struct {
	ID     uuid.UUID
	Exists bool
}

// Check reports, per channel id, whether the caller can see the channel.
// Channels the caller may not connect read as not existing.
func (e *Engine) Check(tx Tx, caller domain.Caller, channelIDs []uuid.UUID) ([]CheckResult, error) {
	if len(channelIDs) > MaxCheck {
		return nil, domain.Invalid("ids", "at most %d ids may be checked at once, got %d", MaxCheck, len(channelIDs))
	}

	out := make([]CheckResult, 0, len(channelIDs))
	for _, id := range channelIDs {
		v, err := e.resolver.Resolve(tx, domain.KindServiceChannel, id, versioning.PolicyLatestActive)
		if err != nil && domain.CodeOf(err) != domain.CodeEntityNotFound {
			return nil, err
		}
		out = append(out, CheckResult{ID: id, Exists: err == nil && Visible(caller, v)})
	}
	return out, nil
}

// Visible reports whether caller may connect to the channel version v.
func Visible(caller domain.Caller, v *domain.Version) bool {
	if v == nil || v.Channel == nil {
		return false
	}
	if v.Channel.CommonForAll {
		return true
	}
	return caller.BelongsTo(v.OrganizationID)
}

func (e *Engine) existing(tx Tx, owner uuid.UUID, d Direction) ([]*domain.Connection, error) {
	if d == ChannelToServices {
		return tx.ConnectionsOfChannel(owner)
	}
	return tx.ConnectionsOfService(owner)
}

// counterpart resolves a relation to a root id. ok is false when the root does
// not exist or, for channels, is not visible to the caller.
func (e *Engine) counterpart(tx Tx, caller domain.Caller, rel Relation, d Direction) (uuid.UUID, bool, error) {
	kind := d.counterpartKind()

	var (
		v   *domain.Version
		err error
	)
	if rel.SourceID != "" {
		v, err = e.resolver.ResolveBySource(tx, caller, kind, rel.SourceID, versioning.PolicyLatestActive)
	} else {
		v, err = e.resolver.Resolve(tx, kind, rel.ID, versioning.PolicyLatestActive)
	}
	if err != nil {
		if domain.CodeOf(err) == domain.CodeEntityNotFound {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}

	if kind == domain.KindServiceChannel && !Visible(caller, v) {
		return uuid.Nil, false, nil
	}
	return v.RootID, true, nil
}

// astiMarker decides the ASTI flag of a saved connection. Only ASTI callers
// set it; everyone else keeps what is stored.
func astiMarker(caller domain.Caller, rel Relation, stored *domain.Connection) bool {
	if caller.ASTI {
		return rel.ASTI
	}
	if stored != nil {
		return stored.ASTI
	}
	return false
}

func counterpartOf(c *domain.Connection, d Direction) uuid.UUID {
	if d == ChannelToServices {
		return c.ServiceRootID
	}
	return c.ChannelRootID
}

func describe(rel Relation) string {
	if rel.SourceID != "" {
		return rel.SourceID
	}
	return rel.ID.String()
}

func intPtr(i int) *int { return &i }
