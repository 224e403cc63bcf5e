package translation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/connections"
	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
)

type OpeningDTO struct {
	DayFrom string `json:"dayFrom"`
	From    string `json:"from"`
	To      string `json:"to"`
}

type ServiceHourDTO struct {
	ServiceHourType       string         `json:"serviceHourType"`
	ValidFrom             string         `json:"validFrom,omitempty"`
	ValidTo               string         `json:"validTo,omitempty"`
	IsClosed              bool           `json:"isClosed"`
	OpeningHour           []OpeningDTO   `json:"openingHour,omitempty"`
	AdditionalInformation []LanguageItem `json:"additionalInformation,omitempty"`
}

type ContactDetailsDTO struct {
	Emails       []LanguageItem `json:"emails,omitempty"`
	PhoneNumbers []PhoneDTO     `json:"phoneNumbers,omitempty"`
	WebPages     []LanguageItem `json:"webPages,omitempty"`
}

// RelationIn is one requested connection. The counterpart is named either by
// id or by the caller's source id.
type RelationIn struct {
	ID                string             `json:"id,omitempty"`
	SourceID          string             `json:"sourceId,omitempty"`
	IsASTIConnection  bool               `json:"isASTIConnection,omitempty"`
	ServiceChargeType string             `json:"serviceChargeType,omitempty"`
	Descriptions      []LanguageItem     `json:"description,omitempty"`
	ServiceHours      []ServiceHourDTO   `json:"serviceHours,omitempty"`
	ContactDetails    *ContactDetailsDTO `json:"contactDetails,omitempty"`
}

// ConnectionsIn is a connection edit request body.
type ConnectionsIn struct {
	DeleteAllChannelRelations bool         `json:"deleteAllChannelRelations,omitempty"`
	DeleteAllServiceRelations bool         `json:"deleteAllServiceRelations,omitempty"`
	Relations                 []RelationIn `json:"relations"`
}

type ConnectionOut struct {
	ServiceID         string             `json:"serviceId"`
	ServiceChannelID  string             `json:"serviceChannelId"`
	IsASTIConnection  bool               `json:"isASTIConnection"`
	ServiceChargeType string             `json:"serviceChargeType,omitempty"`
	Descriptions      []LanguageItem     `json:"description,omitempty"`
	ServiceHours      []ServiceHourDTO   `json:"serviceHours,omitempty"`
	ContactDetails    *ContactDetailsDTO `json:"contactDetails,omitempty"`
	Modified          time.Time          `json:"modified"`
}

type UnresolvedOut struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	SourceID string `json:"sourceId,omitempty"`
}

// ConnectionResultOut reports an applied connection edit.
type ConnectionResultOut struct {
	Saved      []ConnectionOut `json:"saved"`
	Removed    []ConnectionOut `json:"removed,omitempty"`
	Unresolved []UnresolvedOut `json:"unresolved,omitempty"`
}

type CheckOut struct {
	ID     string `json:"id"`
	Exists bool   `json:"exists"`
}

var serviceHourTypes = map[string]string{
	"standard":  "Standard",
	"exception": "Exception",
	"special":   "Special",
}

// RelationsToInternal validates a connection request for one API version.
func (t *Translator) RelationsToInternal(version int, direction connections.Direction, in *ConnectionsIn) ([]connections.Relation, connections.Options, error) {
	opts := connections.Options{
		Direction:                 direction,
		DeleteAllChannelRelations: in.DeleteAllChannelRelations,
		DeleteAllServiceRelations: in.DeleteAllServiceRelations,
	}
	if err := CheckVersion(domain.KindService, version); err != nil {
		return nil, opts, err
	}

	var errs domain.FieldErrors
	relations := make([]connections.Relation, 0, len(in.Relations))
	for i, r := range in.Relations {
		rel := connections.Relation{
			SourceID: strings.TrimSpace(r.SourceID),
			ASTI:     r.IsASTIConnection,
		}
		if r.ID != "" {
			id, err := uuid.Parse(r.ID)
			if err != nil {
				errs.AddAt("relations", i, "invalid id %q", r.ID)
				continue
			}
			rel.ID = id
		}
		if r.ServiceChargeType != "" {
			id, ok := t.types.ID(typecache.KindServiceChargeType, r.ServiceChargeType)
			if !ok {
				errs.AddAt("relations", i, "unknown service charge type %q", r.ServiceChargeType)
				continue
			}
			rel.ChargeTypeID = id
		}
		var nested domain.FieldErrors
		rel.Descriptions = t.base.languageMap("description", r.Descriptions, &nested)
		rel.ServiceHours = t.serviceHours(r.ServiceHours, &nested)
		if r.ContactDetails != nil {
			rel.Contact = &domain.ContactDetails{
				Emails:   t.base.languageMap("contactDetails.emails", r.ContactDetails.Emails, &nested),
				Phones:   phoneNumbers(t.base, "contactDetails.phoneNumbers", r.ContactDetails.PhoneNumbers, &nested),
				WebPages: t.base.languageMap("contactDetails.webPages", r.ContactDetails.WebPages, &nested),
			}
		}
		errs.Nest("relations", i, nested)
		relations = append(relations, rel)
	}

	if err := errs.Err(); err != nil {
		return nil, opts, err
	}
	return relations, opts, nil
}

func (t *Translator) serviceHours(items []ServiceHourDTO, errs *domain.FieldErrors) []domain.ServiceHour {
	var out []domain.ServiceHour
	for j, h := range items {
		kind, ok := serviceHourTypes[strings.ToLower(h.ServiceHourType)]
		if !ok {
			errs.AddAt("serviceHours", j, "unknown service hour type %q", h.ServiceHourType)
			continue
		}
		sh := domain.ServiceHour{
			Type:                  kind,
			ValidFrom:             h.ValidFrom,
			ValidTo:               h.ValidTo,
			IsClosed:              h.IsClosed,
			AdditionalInformation: t.base.languageMap(fmt.Sprintf("serviceHours[%d].additionalInformation", j), h.AdditionalInformation, errs),
		}
		for _, o := range h.OpeningHour {
			sh.Openings = append(sh.Openings, domain.Opening{Day: o.DayFrom, From: o.From, To: o.To})
		}
		out = append(out, sh)
	}
	return out
}

// connectionItems projects connections, ordered by service then channel id.
func (t *Translator) connectionItems(list []*domain.Connection) []ConnectionOut {
	if len(list) == 0 {
		return nil
	}
	out := make([]ConnectionOut, 0, len(list))
	for _, c := range list {
		out = append(out, t.connectionItem(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServiceID != out[j].ServiceID {
			return out[i].ServiceID < out[j].ServiceID
		}
		return out[i].ServiceChannelID < out[j].ServiceChannelID
	})
	return out
}

func (t *Translator) connectionItem(c *domain.Connection) ConnectionOut {
	out := ConnectionOut{
		ServiceID:        c.ServiceRootID.String(),
		ServiceChannelID: c.ChannelRootID.String(),
		IsASTIConnection: c.ASTI,
		Descriptions:     languageItems(c.Descriptions),
		Modified:         c.Modified,
	}
	if c.ChargeTypeID != uuid.Nil {
		out.ServiceChargeType, _ = t.types.Name(typecache.KindServiceChargeType, c.ChargeTypeID)
	}
	for _, h := range c.ServiceHours {
		dto := ServiceHourDTO{
			ServiceHourType:       h.Type,
			ValidFrom:             h.ValidFrom,
			ValidTo:               h.ValidTo,
			IsClosed:              h.IsClosed,
			AdditionalInformation: languageItems(h.AdditionalInformation),
		}
		for _, o := range h.Openings {
			dto.OpeningHour = append(dto.OpeningHour, OpeningDTO{DayFrom: o.Day, From: o.From, To: o.To})
		}
		out.ServiceHours = append(out.ServiceHours, dto)
	}
	if c.Contact != nil {
		out.ContactDetails = &ContactDetailsDTO{
			Emails:       languageItems(c.Contact.Emails),
			PhoneNumbers: phoneItems(t.base, c.Contact.Phones),
			WebPages:     languageItems(c.Contact.WebPages),
		}
	}
	return out
}

// ConnectionResult projects the outcome of an applied connection edit.
func (t *Translator) ConnectionResult(res *connections.Result) *ConnectionResultOut {
	out := &ConnectionResultOut{
		Saved:   t.connectionItems(res.Saved),
		Removed: t.connectionItems(res.Removed),
	}
	if out.Saved == nil {
		out.Saved = []ConnectionOut{}
	}
	for _, u := range res.Unresolved {
		item := UnresolvedOut{Index: u.Index, SourceID: u.SourceID}
		if u.ID != uuid.Nil {
			item.ID = u.ID.String()
		}
		out.Unresolved = append(out.Unresolved, item)
	}
	return out
}

// CheckItems projects existence checks.
func CheckItems(list []connections.CheckResult) []CheckOut {
	out := make([]CheckOut, 0, len(list))
	for _, c := range list {
		out = append(out, CheckOut{ID: c.ID.String(), Exists: c.Exists})
	}
	return out
}
