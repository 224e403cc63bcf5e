package typecache

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
)

// Kind is a category of enumerated reference values.
type Kind string

const (
	KindPublishingStatus    Kind = "PublishingStatus"
	KindServiceChannelType  Kind = "ServiceChannelType"
	KindAreaInformationType Kind = "AreaInformationType"
	KindAreaType            Kind = "AreaType"
	KindAddressType         Kind = "AddressType"
	KindPhoneNumberType     Kind = "PhoneNumberType"
	KindServiceChargeType   Kind = "ServiceChargeType"
	KindLanguage            Kind = "Language"

	KindAccessibilityLevel Kind = "AccessibilityClassificationLevel"
)

// namespace seeds the deterministic ids so that the same taxonomy always yields
// the same ids across restarts.
var namespace = uuid.MustParse("6f1c1c2e-4b8a-5d7e-9a34-2c0f5e9d7b11")

type entry struct {
	kind Kind
	name string
}

// Cache is a bidirectional name/id lookup over reference enumerations.
// It is built once at startup and is safe for concurrent reads.
type Cache struct {
	mu     sync.RWMutex
	byName map[Kind]map[string]uuid.UUID // lowercased name -> id
	byID   map[uuid.UUID]entry
	names  map[Kind][]string // canonical names, load order
}

// New builds the cache. The taxonomy must contain every publishing status and
// every channel type since the core relies on them.
func New(taxonomy map[Kind][]string) (*Cache, error) {
	c := &Cache{}
	if err := c.Update(taxonomy); err != nil {
		return nil, err
	}
	return c, nil
}

// IDFor is the deterministic id of (kind, name).
func IDFor(kind Kind, name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(string(kind)+"/"+name))
}

// Update replaces the whole taxonomy.
func (c *Cache) Update(taxonomy map[Kind][]string) error {
	if err := requireNames(taxonomy, KindPublishingStatus, statusNames()); err != nil {
		return err
	}
	if err := requireNames(taxonomy, KindServiceChannelType, channelTypeNames()); err != nil {
		return err
	}

	byName := make(map[Kind]map[string]uuid.UUID, len(taxonomy))
	byID := make(map[uuid.UUID]entry)
	names := make(map[Kind][]string, len(taxonomy))

	for kind, values := range taxonomy {
		byName[kind] = make(map[string]uuid.UUID, len(values))
		for _, name := range values {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("typecache: empty name in %s", kind)
			}
			key := strings.ToLower(name)
			if _, dup := byName[kind][key]; dup {
				return fmt.Errorf("typecache: duplicate name %q in %s", name, kind)
			}
			id := IDFor(kind, name)
			byName[kind][key] = id
			byID[id] = entry{kind: kind, name: name}
			names[kind] = append(names[kind], name)
		}
	}

	c.mu.Lock()
	c.byName = byName
	c.byID = byID
	c.names = names
	c.mu.Unlock()
	return nil
}

// ID returns the id of name within kind. Lookups are case-insensitive.
func (c *Cache) ID(kind Kind, name string) (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byName[kind][strings.ToLower(name)]
	return id, ok
}

// Name returns the canonical name of id, provided it belongs to kind.
func (c *Cache) Name(kind Kind, id uuid.UUID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.byID[id]
	if !ok || e.kind != kind {
		return "", false
	}
	return e.name, true
}

// Names returns the canonical names of kind in load order.
func (c *Cache) Names(kind Kind) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.names[kind]...)
}

// Kinds returns the loaded kinds, sorted.
func (c *Cache) Kinds() []Kind {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Kind, 0, len(c.names))
	for k := range c.names {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns the number of loaded values.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.byID)
}

// StatusID returns the id of a publishing status. Every status is guaranteed to
// be present.
func (c *Cache) StatusID(s domain.PublishingStatus) uuid.UUID {
	id, ok := c.ID(KindPublishingStatus, string(s))
	if !ok {
		panic(fmt.Sprintf("typecache: publishing status %q not loaded", s))
	}
	return id
}

// Status returns the publishing status for id, or "" if id is not a status.
func (c *Cache) Status(id uuid.UUID) domain.PublishingStatus {
	name, ok := c.Name(KindPublishingStatus, id)
	if !ok {
		return ""
	}
	return domain.PublishingStatus(name)
}

// ChannelTypeID returns the id of a channel type. Every type is guaranteed to be
// present.
func (c *Cache) ChannelTypeID(t domain.ChannelType) uuid.UUID {
	id, ok := c.ID(KindServiceChannelType, string(t))
	if !ok {
		panic(fmt.Sprintf("typecache: channel type %q not loaded", t))
	}
	return id
}

// ChannelType returns the channel type for id, or "" if unknown.
func (c *Cache) ChannelType(id uuid.UUID) domain.ChannelType {
	name, ok := c.Name(KindServiceChannelType, id)
	if !ok {
		return ""
	}
	return domain.ChannelType(name)
}

func requireNames(taxonomy map[Kind][]string, kind Kind, want []string) error {
	have := make(map[string]bool, len(taxonomy[kind]))
	for _, n := range taxonomy[kind] {
		have[strings.TrimSpace(n)] = true
	}
	for _, w := range want {
		if !have[w] {
			return fmt.Errorf("typecache: %s is missing %q", kind, w)
		}
	}
	return nil
}

func statusNames() []string {
	out := make([]string, 0, len(domain.PublishingStatuses))
	for _, s := range domain.PublishingStatuses {
		out = append(out, string(s))
	}
	return out
}

func channelTypeNames() []string {
	out := make([]string, 0, len(domain.ChannelTypes))
	for _, t := range domain.ChannelTypes {
		out = append(out, string(t))
	}
	return out
}
