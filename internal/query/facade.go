// Package query lists entities page by page.
package query

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
	"github.com/MrSnakeDoc/catalog/internal/versioning"
)

const (
	// MaxPageSize is the page ceiling; larger requests fail.
	MaxPageSize = 100
	// MaxIDFilter bounds id-list filters.
	MaxIDFilter = 100

	DefaultPageSize = 100
)

// Filter selects entities. Zero values mean "no restriction".
type Filter struct {
	Kind   domain.EntityKind
	Policy versioning.Policy

	Status          domain.PublishingStatus
	ChannelType     domain.ChannelType
	OrganizationIDs []uuid.UUID
	RootIDs         []uuid.UUID
	ModifiedAfter   time.Time
	ModifiedBefore  time.Time
	AreaType        string
	Municipality    string

	Page     int // 1-based
	PageSize int
}

// Page is one page of resolved versions.
type Page struct {
	Items      []*domain.Version
	Page       int
	PageSize   int
	PageCount  int
	TotalCount int
}

// Tx is the storage surface listing needs.
type Tx interface {
	versioning.Reader
	RootsByKind(kind domain.EntityKind) ([]*domain.Root, error)
}

type Facade struct {
	types    *typecache.Cache
	resolver *versioning.Resolver
}

func NewFacade(types *typecache.Cache, resolver *versioning.Resolver) *Facade {
	return &Facade{types: types, resolver: resolver}
}

// List resolves every root of the filter's kind, keeps the matching versions,
// orders them newest first and returns the requested page.
func (f *Facade) List(tx Tx, filter Filter) (*Page, error) {
	if err := f.validate(&filter); err != nil {
		return nil, err
	}

	var versions []*domain.Version
	if len(filter.RootIDs) > 0 {
		list, err := f.resolver.ResolveMany(tx, filter.Kind, filter.RootIDs, filter.Policy)
		if err != nil {
			return nil, err
		}
		versions = list
	} else {
		roots, err := tx.RootsByKind(filter.Kind)
		if err != nil {
			return nil, err
		}
		for _, r := range roots {
			v, err := f.resolver.Resolve(tx, filter.Kind, r.ID, filter.Policy)
			if err != nil {
				if domain.CodeOf(err) == domain.CodeEntityNotFound {
					continue
				}
				return nil, err
			}
			versions = append(versions, v)
		}
	}

	matched := versions[:0]
	for _, v := range versions {
		if f.matches(v, &filter) {
			matched = append(matched, v)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Modified.Equal(matched[j].Modified) {
			return matched[i].Modified.After(matched[j].Modified)
		}
		return matched[i].RootID.String() < matched[j].RootID.String()
	})

	page := &Page{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: len(matched),
		PageCount:  (len(matched) + filter.PageSize - 1) / filter.PageSize,
	}
	start := (filter.Page - 1) * filter.PageSize
	if start < len(matched) {
		end := start + filter.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		page.Items = matched[start:end]
	}
	return page, nil
}

func (f *Facade) validate(filter *Filter) error {
	if _, ok := domain.ParseEntityKind(string(filter.Kind)); !ok {
		return domain.Invalid("kind", "unknown entity kind %q", filter.Kind)
	}
	if filter.PageSize == 0 {
		filter.PageSize = DefaultPageSize
	}
	if filter.PageSize < 0 || filter.PageSize > MaxPageSize {
		return domain.Invalid("pageSize", "page size must be between 1 and %d", MaxPageSize)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if len(filter.OrganizationIDs) > MaxIDFilter {
		return domain.Invalid("organizationIds", "at most %d organizations may be given, got %d", MaxIDFilter, len(filter.OrganizationIDs))
	}
	if len(filter.RootIDs) > MaxIDFilter {
		return domain.Invalid("guids", "at most %d ids may be given, got %d", MaxIDFilter, len(filter.RootIDs))
	}
	if filter.Policy == "" {
		filter.Policy = versioning.PolicyPublished
	}
	if filter.Status != "" && !validStatus(filter.Status) {
		return domain.Invalid("status", "unknown publishing status %q", filter.Status)
	}
	if filter.ChannelType != "" {
		if filter.Kind != domain.KindServiceChannel {
			return domain.Invalid("serviceChannelType", "only channels have a channel type")
		}
		if _, ok := domain.ParseChannelType(string(filter.ChannelType)); !ok {
			return domain.Invalid("serviceChannelType", "unknown channel type %q", filter.ChannelType)
		}
	}
	if filter.AreaType != "" {
		if _, ok := f.types.ID(typecache.KindAreaType, filter.AreaType); !ok {
			return domain.Invalid("areaType", "unknown area type %q", filter.AreaType)
		}
	}
	if !filter.ModifiedAfter.IsZero() && !filter.ModifiedBefore.IsZero() && filter.ModifiedBefore.Before(filter.ModifiedAfter) {
		return domain.Invalid("date", "end of the window is before its start")
	}
	return nil
}

func (f *Facade) matches(v *domain.Version, filter *Filter) bool {
	if filter.Status != "" && f.types.Status(v.StatusID) != filter.Status {
		return false
	}
	if filter.ChannelType != "" && (v.Channel == nil || f.types.ChannelType(v.Channel.TypeID) != filter.ChannelType) {
		return false
	}
	if len(filter.OrganizationIDs) > 0 && !containsID(filter.OrganizationIDs, v.OrganizationID) {
		return false
	}
	if !filter.ModifiedAfter.IsZero() && v.Modified.Before(filter.ModifiedAfter) {
		return false
	}
	if !filter.ModifiedBefore.IsZero() && v.Modified.After(filter.ModifiedBefore) {
		return false
	}
	if filter.AreaType != "" && !f.hasAreaType(v, filter.AreaType) {
		return false
	}
	if filter.Municipality != "" && !f.inMunicipality(v, filter.Municipality) {
		return false
	}
	return true
}

func (f *Facade) hasAreaType(v *domain.Version, areaType string) bool {
	id, _ := f.types.ID(typecache.KindAreaType, areaType)
	for _, a := range v.Areas {
		if a.TypeID == id {
			return true
		}
	}
	return false
}

// inMunicipality matches municipality areas and, for channels, addresses.
func (f *Facade) inMunicipality(v *domain.Version, code string) bool {
	municipalityType, _ := f.types.ID(typecache.KindAreaType, "Municipality")
	for _, a := range v.Areas {
		if a.TypeID == municipalityType && a.Code == code {
			return true
		}
	}
	if v.Channel == nil {
		return false
	}
	if sl := v.Channel.ServiceLocation; sl != nil {
		for _, a := range sl.Addresses {
			if a.MunicipalityCode == code {
				return true
			}
		}
	}
	if pf := v.Channel.PrintableForm; pf != nil && pf.DeliveryAddress != nil {
		return pf.DeliveryAddress.MunicipalityCode == code
	}
	return false
}

func validStatus(s domain.PublishingStatus) bool {
	for _, p := range domain.PublishingStatuses {
		if p == s {
			return true
		}
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
