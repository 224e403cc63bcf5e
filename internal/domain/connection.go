package domain

import (
	"time"

	"github.com/google/uuid"
)

// Connection links a service root to a channel root. At most one exists per pair.
type Connection struct {
	ServiceRootID uuid.UUID
	ChannelRootID uuid.UUID

	// ASTI marks connections maintained by a system-of-record integration.
	ASTI bool

	ChargeTypeID uuid.UUID
	Descriptions map[string]string
	ServiceHours []ServiceHour
	Contact      *ContactDetails

	Modified   time.Time
	ModifiedBy string
}

// Clone returns a deep copy.
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}
	out := *c
	out.Descriptions = cloneStrings(c.Descriptions)
	out.ServiceHours = make([]ServiceHour, len(c.ServiceHours))
	for i, h := range c.ServiceHours {
		h.Openings = append([]Opening(nil), h.Openings...)
		h.AdditionalInformation = cloneStrings(h.AdditionalInformation)
		out.ServiceHours[i] = h
	}
	if c.Contact != nil {
		cd := *c.Contact
		cd.Emails = cloneStrings(c.Contact.Emails)
		cd.WebPages = cloneStrings(c.Contact.WebPages)
		cd.Phones = append([]PhoneNumber(nil), c.Contact.Phones...)
		out.Contact = &cd
	}
	return &out
}

// ServiceHour is an opening-hours block attached to a connection.
type ServiceHour struct {
	Type                  string // Standard | Exception | Special
	ValidFrom             string
	ValidTo               string
	IsClosed              bool
	Openings              []Opening
	AdditionalInformation map[string]string
}

type Opening struct {
	Day  string
	From string
	To   string
}

// ContactDetails is the connection-specific contact information.
type ContactDetails struct {
	Emails   map[string]string
	Phones   []PhoneNumber
	WebPages map[string]string
}

// ExternalSource maps a caller-supplied source id to a root.
// (Kind, Caller, SourceID) is unique.
type ExternalSource struct {
	Kind     EntityKind
	Caller   string
	SourceID string
	RootID   uuid.UUID
}
