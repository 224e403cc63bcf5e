package translation

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
)

// baseTranslator handles the fields shared by every kind.
type baseTranslator struct {
	types *typecache.Cache
}

func (b *baseTranslator) present(c *Common) []Field {
	if c.AreaType != "" || len(c.Areas) > 0 {
		return []Field{FieldAreas}
	}
	return nil
}

func (b *baseTranslator) toInternal(kind domain.EntityKind, c *Common, draft *domain.VersionDraft, errs *domain.FieldErrors) {
	draft.Kind = kind
	draft.SourceID = strings.TrimSpace(c.SourceID)
	draft.Names = b.languageMap("names", c.Names, errs)
	draft.Descriptions = b.languageMap("descriptions", c.Descriptions, errs)
	draft.Languages = append([]string(nil), c.Languages...)

	switch {
	case c.OrganizationID != "":
		id, err := uuid.Parse(c.OrganizationID)
		if err != nil {
			errs.Add("organizationId", "invalid id %q", c.OrganizationID)
		} else {
			draft.OrganizationID = id
		}
	case kind != domain.KindOrganization:
		errs.Add("organizationId", "organization is required")
	}

	switch domain.PublishingStatus(c.PublishingStatus) {
	case "", domain.StatusDraft:
	case domain.StatusPublished:
		draft.Publish = true
	default:
		errs.Add("publishingStatus", "only %s or %s may be requested", domain.StatusDraft, domain.StatusPublished)
	}

	if c.AreaType != "" {
		id, ok := b.types.ID(typecache.KindAreaInformationType, c.AreaType)
		if !ok {
			errs.Add("areaType", "unknown area type %q", c.AreaType)
		}
		draft.AreaInformationTypeID = id
	}
	for i, a := range c.Areas {
		typeID, ok := b.types.ID(typecache.KindAreaType, a.Type)
		if !ok {
			errs.AddAt("areas", i, "unknown area type %q", a.Type)
			continue
		}
		if len(a.AreaCodes) == 0 {
			errs.AddAt("areas", i, "at least one area code is required")
		}
		for _, code := range a.AreaCodes {
			draft.Areas = append(draft.Areas, domain.Area{TypeID: typeID, Code: code})
		}
	}
}

func (b *baseTranslator) toExternal(p Policy, snap *Snapshot, c *Common) {
	v := snap.Version

	c.SourceID = snap.SourceID
	if v.OrganizationID != uuid.Nil {
		c.OrganizationID = v.OrganizationID.String()
	}
	c.Names = languageItems(v.Names)
	c.Descriptions = languageItems(v.Descriptions)
	c.PublishingStatus = string(b.types.Status(v.StatusID))

	c.Languages = nil
	for _, l := range snap.Languages {
		c.Languages = append(c.Languages, l.Language)
	}

	if p.Has(FieldAreas) {
		if v.AreaInformationTypeID != uuid.Nil {
			c.AreaType, _ = b.types.Name(typecache.KindAreaInformationType, v.AreaInformationTypeID)
		}
		c.Areas = b.areaItems(v.Areas)
	}
}

// audit returns the version-dependent audit fields.
func (b *baseTranslator) audit(p Policy, snap *Snapshot) (*time.Time, []LanguageAvailabilityDTO) {
	var modified *time.Time
	if p.Has(FieldModified) {
		m := snap.Version.Modified
		modified = &m
	}

	if !p.Has(FieldLanguageAvailabilities) {
		return modified, nil
	}

	out := make([]LanguageAvailabilityDTO, 0, len(snap.Languages))
	for _, l := range snap.Languages {
		dto := LanguageAvailabilityDTO{
			Language:         l.Language,
			PublishingStatus: string(b.types.Status(l.StatusID)),
			Modified:         l.Modified,
			ModifiedBy:       l.ModifiedBy,
		}
		if !l.PublishedAt.IsZero() {
			at := l.PublishedAt
			dto.PublishedAt = &at
		}
		out = append(out, dto)
	}
	return modified, out
}

// languageMap turns localized items into a map keyed by canonical language code.
func (b *baseTranslator) languageMap(field string, items []LanguageItem, errs *domain.FieldErrors) map[string]string {
	if len(items) == 0 {
		return nil
	}

	out := make(map[string]string, len(items))
	for i, item := range items {
		lang, ok := b.language(item.Language)
		if !ok {
			errs.AddAt(field, i, "unknown language %q", item.Language)
			continue
		}
		if _, dup := out[lang]; dup {
			errs.AddAt(field, i, "language %s given twice", lang)
			continue
		}
		if strings.TrimSpace(item.Value) == "" {
			errs.AddAt(field, i, "value is required")
			continue
		}
		out[lang] = item.Value
	}
	return out
}

func (b *baseTranslator) language(code string) (string, bool) {
	id, ok := b.types.ID(typecache.KindLanguage, code)
	if !ok {
		return "", false
	}
	return b.types.Name(typecache.KindLanguage, id)
}

// areaItems groups areas by type, keeping first-appearance order.
func (b *baseTranslator) areaItems(areas []domain.Area) []AreaDTO {
	if len(areas) == 0 {
		return nil
	}

	var out []AreaDTO
	index := make(map[uuid.UUID]int)
	for _, a := range areas {
		i, ok := index[a.TypeID]
		if !ok {
			name, _ := b.types.Name(typecache.KindAreaType, a.TypeID)
			out = append(out, AreaDTO{Type: name})
			i = len(out) - 1
			index[a.TypeID] = i
		}
		out[i].AreaCodes = append(out[i].AreaCodes, a.Code)
	}
	return out
}

func (b *baseTranslator) accessibility(items []AccessibilityDTO, errs *domain.FieldErrors) []domain.Accessibility {
	var out []domain.Accessibility
	for i, a := range items {
		lang, ok := b.language(a.Language)
		if !ok {
			errs.AddAt(string(FieldAccessibility), i, "unknown language %q", a.Language)
			continue
		}
		levelID, ok := b.types.ID(typecache.KindAccessibilityLevel, a.Level)
		if !ok {
			errs.AddAt(string(FieldAccessibility), i, "unknown classification level %q", a.Level)
			continue
		}
		level, _ := b.types.Name(typecache.KindAccessibilityLevel, levelID)
		out = append(out, domain.Accessibility{Language: lang, Level: level, URL: a.URL})
	}
	return out
}

func accessibilityItems(list []domain.Accessibility) []AccessibilityDTO {
	if len(list) == 0 {
		return nil
	}
	out := make([]AccessibilityDTO, 0, len(list))
	for _, a := range list {
		out = append(out, AccessibilityDTO{Language: a.Language, Level: a.Level, URL: a.URL})
	}
	return out
}

// languageItems returns the map as items sorted by language, nil when empty.
func languageItems(m map[string]string) []LanguageItem {
	if len(m) == 0 {
		return nil
	}
	out := make([]LanguageItem, 0, len(m))
	for lang, value := range m {
		out = append(out, LanguageItem{Language: lang, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}
