package translation

import (
	"context"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
)

// payload translates the type-specific part of one channel type.
type payload interface {
	channelType() domain.ChannelType
	owns() []Field
	toInternal(ctx context.Context, p Policy, in *ChannelIn, ignored map[Field]bool, c *domain.ChannelContent, errs *domain.FieldErrors) error
	toExternal(p Policy, c *domain.ChannelContent, out *ChannelOut)
}

// presentChannelFields lists the type-specific fields a request carries.
func presentChannelFields(in *ChannelIn) []Field {
	var out []Field
	if len(in.URLs) > 0 {
		out = append(out, FieldURLs)
	}
	if len(in.Accessibility) > 0 {
		out = append(out, FieldAccessibility)
	}
	if in.SignatureQuantity != nil {
		out = append(out, FieldSignatureQuantity)
	}
	if in.RequiresSignature != nil {
		out = append(out, FieldRequiresSignature)
	}
	if in.RequiresAuthentication != nil {
		out = append(out, FieldRequiresAuthentication)
	}
	if len(in.PhoneNumbers) > 0 {
		out = append(out, FieldPhoneNumbers)
	}
	if len(in.FormIdentifier) > 0 {
		out = append(out, FieldFormIdentifier)
	}
	if in.DeliveryAddress != nil {
		out = append(out, FieldDeliveryAddress)
	}
	if len(in.Addresses) > 0 {
		out = append(out, FieldAddresses)
	}
	return out
}

// --- Electronic channel

type electronicPayload struct {
	base *baseTranslator
}

func (electronicPayload) channelType() domain.ChannelType { return domain.ChannelElectronic }

func (electronicPayload) owns() []Field {
	return []Field{FieldURLs, FieldAccessibility, FieldSignatureQuantity, FieldRequiresSignature, FieldRequiresAuthentication}
}

func (e electronicPayload) toInternal(_ context.Context, _ Policy, in *ChannelIn, ignored map[Field]bool, c *domain.ChannelContent, errs *domain.FieldErrors) error {
	out := &domain.ElectronicChannel{
		URLs:          e.base.languageMap(string(FieldURLs), in.URLs, errs),
		Accessibility: e.base.accessibility(in.Accessibility, errs),
	}
	if len(in.URLs) == 0 {
		errs.Add(string(FieldURLs), "at least one url is required")
	}
	if in.SignatureQuantity != nil && !ignored[FieldSignatureQuantity] {
		if *in.SignatureQuantity < 0 {
			errs.Add(string(FieldSignatureQuantity), "must not be negative")
		}
		out.SignatureQuantity = *in.SignatureQuantity
	}
	if in.RequiresSignature != nil && !ignored[FieldRequiresSignature] {
		out.RequiresSignature = *in.RequiresSignature
	}
	if in.RequiresAuthentication != nil {
		out.RequiresAuthentication = *in.RequiresAuthentication
	}
	c.Electronic = out
	return nil
}

func (e electronicPayload) toExternal(p Policy, c *domain.ChannelContent, out *ChannelOut) {
	ch := c.Electronic
	if ch == nil {
		return
	}
	out.URLs = languageItems(ch.URLs)
	if p.Has(FieldSignatureQuantity) {
		n := ch.SignatureQuantity
		out.SignatureQuantity = &n
	}
	if p.Has(FieldRequiresSignature) {
		b := ch.RequiresSignature
		out.RequiresSignature = &b
	}
	auth := ch.RequiresAuthentication
	out.RequiresAuthentication = &auth
	if p.Has(FieldAccessibility) {
		out.Accessibility = accessibilityItems(ch.Accessibility)
	}
}

// --- Phone channel

type phonePayload struct {
	base *baseTranslator
}

func (phonePayload) channelType() domain.ChannelType { return domain.ChannelPhone }

func (phonePayload) owns() []Field { return []Field{FieldPhoneNumbers} }

func (ph phonePayload) toInternal(_ context.Context, _ Policy, in *ChannelIn, _ map[Field]bool, c *domain.ChannelContent, errs *domain.FieldErrors) error {
	if len(in.PhoneNumbers) == 0 {
		errs.Add(string(FieldPhoneNumbers), "at least one phone number is required")
	}
	c.Phone = &domain.PhoneChannel{Numbers: phoneNumbers(ph.base, string(FieldPhoneNumbers), in.PhoneNumbers, errs)}
	return nil
}

func (ph phonePayload) toExternal(_ Policy, c *domain.ChannelContent, out *ChannelOut) {
	if c.Phone == nil {
		return
	}
	out.PhoneNumbers = phoneItems(ph.base, c.Phone.Numbers)
}

func phoneNumbers(b *baseTranslator, field string, items []PhoneDTO, errs *domain.FieldErrors) []domain.PhoneNumber {
	var out []domain.PhoneNumber
	for i, item := range items {
		lang, ok := b.language(item.Language)
		if !ok {
			errs.AddAt(field, i, "unknown language %q", item.Language)
			continue
		}
		typeID, ok := b.types.ID(typecache.KindPhoneNumberType, item.Type)
		if !ok {
			errs.AddAt(field, i, "unknown phone number type %q", item.Type)
			continue
		}
		chargeID, ok := b.types.ID(typecache.KindServiceChargeType, item.ServiceChargeType)
		if !ok {
			errs.AddAt(field, i, "unknown service charge type %q", item.ServiceChargeType)
			continue
		}
		if item.Number == "" {
			errs.AddAt(field, i, "number is required")
			continue
		}
		out = append(out, domain.PhoneNumber{
			Language:          lang,
			Number:            item.Number,
			PrefixNumber:      item.PrefixNumber,
			TypeID:            typeID,
			ChargeTypeID:      chargeID,
			ChargeDescription: item.ChargeDescription,
		})
	}
	return out
}

func phoneItems(b *baseTranslator, numbers []domain.PhoneNumber) []PhoneDTO {
	if len(numbers) == 0 {
		return nil
	}
	out := make([]PhoneDTO, 0, len(numbers))
	for _, n := range numbers {
		typeName, _ := b.types.Name(typecache.KindPhoneNumberType, n.TypeID)
		charge, _ := b.types.Name(typecache.KindServiceChargeType, n.ChargeTypeID)
		out = append(out, PhoneDTO{
			Number:            n.Number,
			PrefixNumber:      n.PrefixNumber,
			Language:          n.Language,
			Type:              typeName,
			ServiceChargeType: charge,
			ChargeDescription: n.ChargeDescription,
		})
	}
	return out
}

// --- Printable form channel

type printableFormPayload struct {
	address *addressTranslator
}

func (printableFormPayload) channelType() domain.ChannelType { return domain.ChannelPrintableForm }

func (printableFormPayload) owns() []Field { return []Field{FieldFormIdentifier, FieldDeliveryAddress} }

func (f printableFormPayload) toInternal(ctx context.Context, _ Policy, in *ChannelIn, _ map[Field]bool, c *domain.ChannelContent, errs *domain.FieldErrors) error {
	out := &domain.PrintableFormChannel{
		FormIdentifiers: f.address.base.languageMap(string(FieldFormIdentifier), in.FormIdentifier, errs),
	}
	if in.DeliveryAddress != nil {
		a, err := f.address.toInternal(ctx, string(FieldDeliveryAddress), -1, in.DeliveryAddress, errs)
		if err != nil {
			return err
		}
		out.DeliveryAddress = a
	}
	c.PrintableForm = out
	return nil
}

func (f printableFormPayload) toExternal(_ Policy, c *domain.ChannelContent, out *ChannelOut) {
	if c.PrintableForm == nil {
		return
	}
	out.FormIdentifier = languageItems(c.PrintableForm.FormIdentifiers)
	out.DeliveryAddress = f.address.toExternal(c.PrintableForm.DeliveryAddress)
}

// --- Service location channel

type serviceLocationPayload struct {
	address *addressTranslator
}

func (serviceLocationPayload) channelType() domain.ChannelType {
	return domain.ChannelServiceLocation
}

func (serviceLocationPayload) owns() []Field { return []Field{FieldAddresses} }

func (s serviceLocationPayload) toInternal(ctx context.Context, _ Policy, in *ChannelIn, _ map[Field]bool, c *domain.ChannelContent, errs *domain.FieldErrors) error {
	if len(in.Addresses) == 0 {
		errs.Add(string(FieldAddresses), "at least one address is required")
	}
	out := &domain.ServiceLocationChannel{}
	for i := range in.Addresses {
		a, err := s.address.toInternal(ctx, string(FieldAddresses), i, &in.Addresses[i], errs)
		if err != nil {
			return err
		}
		if a != nil {
			out.Addresses = append(out.Addresses, *a)
		}
	}
	c.ServiceLocation = out
	return nil
}

func (s serviceLocationPayload) toExternal(_ Policy, c *domain.ChannelContent, out *ChannelOut) {
	if c.ServiceLocation == nil {
		return
	}
	for i := range c.ServiceLocation.Addresses {
		out.Addresses = append(out.Addresses, *s.address.toExternal(&c.ServiceLocation.Addresses[i]))
	}
}

// --- Web page channel

type webPagePayload struct {
	base *baseTranslator
}

func (webPagePayload) channelType() domain.ChannelType { return domain.ChannelWebPage }

func (webPagePayload) owns() []Field { return []Field{FieldURLs, FieldAccessibility} }

func (w webPagePayload) toInternal(_ context.Context, _ Policy, in *ChannelIn, _ map[Field]bool, c *domain.ChannelContent, errs *domain.FieldErrors) error {
	if len(in.URLs) == 0 {
		errs.Add(string(FieldURLs), "at least one url is required")
	}
	c.WebPage = &domain.WebPageChannel{
		URLs:          w.base.languageMap(string(FieldURLs), in.URLs, errs),
		Accessibility: w.base.accessibility(in.Accessibility, errs),
	}
	return nil
}

func (w webPagePayload) toExternal(p Policy, c *domain.ChannelContent, out *ChannelOut) {
	if c.WebPage == nil {
		return
	}
	out.URLs = languageItems(c.WebPage.URLs)
	if p.Has(FieldAccessibility) {
		out.Accessibility = accessibilityItems(c.WebPage.Accessibility)
	}
}
