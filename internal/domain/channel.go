package domain

import "github.com/google/uuid"

// ChannelType is the service channel type discriminator name.
type ChannelType string

const (
	ChannelElectronic      ChannelType = "EChannel"
	ChannelPhone           ChannelType = "Phone"
	ChannelPrintableForm   ChannelType = "PrintableForm"
	ChannelServiceLocation ChannelType = "ServiceLocation"
	ChannelWebPage         ChannelType = "WebPage"
)

// ChannelTypes lists all channel types.
var ChannelTypes = []ChannelType{
	ChannelElectronic,
	ChannelPhone,
	ChannelPrintableForm,
	ChannelServiceLocation,
	ChannelWebPage,
}

// ParseChannelType returns the channel type matching s, or false.
func ParseChannelType(s string) (ChannelType, bool) {
	for _, t := range ChannelTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ChannelContent is the channel part of a version: a shared base plus exactly one
// type-specific payload selected by TypeID.
type ChannelContent struct {
	// TypeID is the ServiceChannelType type-cache id (the stored discriminator).
	TypeID uuid.UUID

	// CommonForAll lets any organization connect services to this channel.
	CommonForAll bool

	Electronic      *ElectronicChannel
	Phone           *PhoneChannel
	PrintableForm   *PrintableFormChannel
	ServiceLocation *ServiceLocationChannel
	WebPage         *WebPageChannel
}

// Clone returns a deep copy.
func (c *ChannelContent) Clone() *ChannelContent {
	if c == nil {
		return nil
	}
	out := *c
	if c.Electronic != nil {
		e := *c.Electronic
		e.URLs = cloneStrings(c.Electronic.URLs)
		e.Accessibility = append([]Accessibility(nil), c.Electronic.Accessibility...)
		out.Electronic = &e
	}
	if c.Phone != nil {
		p := *c.Phone
		p.Numbers = append([]PhoneNumber(nil), c.Phone.Numbers...)
		out.Phone = &p
	}
	if c.PrintableForm != nil {
		f := *c.PrintableForm
		f.FormIdentifiers = cloneStrings(c.PrintableForm.FormIdentifiers)
		f.DeliveryAddress = c.PrintableForm.DeliveryAddress.Clone()
		out.PrintableForm = &f
	}
	if c.ServiceLocation != nil {
		s := *c.ServiceLocation
		s.Addresses = make([]Address, len(c.ServiceLocation.Addresses))
		for i := range c.ServiceLocation.Addresses {
			s.Addresses[i] = *c.ServiceLocation.Addresses[i].Clone()
		}
		out.ServiceLocation = &s
	}
	if c.WebPage != nil {
		w := *c.WebPage
		w.URLs = cloneStrings(c.WebPage.URLs)
		w.Accessibility = append([]Accessibility(nil), c.WebPage.Accessibility...)
		out.WebPage = &w
	}
	return &out
}

type ElectronicChannel struct {
	URLs                   map[string]string
	SignatureQuantity      int
	RequiresSignature      bool
	RequiresAuthentication bool
	Accessibility          []Accessibility
}

type PhoneChannel struct {
	Numbers []PhoneNumber
}

type PrintableFormChannel struct {
	FormIdentifiers map[string]string
	DeliveryAddress *Address
}

type ServiceLocationChannel struct {
	Addresses []Address
}

type WebPageChannel struct {
	URLs          map[string]string
	Accessibility []Accessibility
}

// Accessibility is an accessibility classification of a web resource.
type Accessibility struct {
	Language string
	Level    string
	URL      string
}

// PhoneNumber is one number of a phone channel or of connection contact details.
type PhoneNumber struct {
	Language          string
	Number            string
	PrefixNumber      string
	TypeID            uuid.UUID // PhoneNumberType
	ChargeTypeID      uuid.UUID // ServiceChargeType
	ChargeDescription string
}

// Address is a postal or visiting address.
type Address struct {
	TypeID           uuid.UUID // AddressType
	StreetName       map[string]string
	StreetNumber     string
	PostOfficeBox    map[string]string
	PostalCode       string
	MunicipalityCode string
}

// Clone returns a deep copy.
func (a *Address) Clone() *Address {
	if a == nil {
		return nil
	}
	c := *a
	c.StreetName = cloneStrings(a.StreetName)
	c.PostOfficeBox = cloneStrings(a.PostOfficeBox)
	return &c
}

// Municipality is a reference-table municipality.
type Municipality struct {
	Code  string
	Names map[string]string
}
