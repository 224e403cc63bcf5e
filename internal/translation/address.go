package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
)

const (
	addressStreet        = "Street"
	addressPostOfficeBox = "PostOfficeBox"
)

// PostalLookup resolves postal codes. *postal.Lookup implements it.
type PostalLookup interface {
	MunicipalityCode(ctx context.Context, postalCode string) (string, bool, error)
	Municipality(code string) (domain.Municipality, bool)
}

type addressTranslator struct {
	base   *baseTranslator
	postal PostalLookup
}

// toInternal translates one address. Street and post office box addresses
// without a municipality get the one their postal code belongs to; an address
// that already names its municipality is left as is.
func (t *addressTranslator) toInternal(ctx context.Context, field string, index int, in *AddressDTO, errs *domain.FieldErrors) (*domain.Address, error) {
	add := func(format string, args ...any) {
		if index < 0 {
			errs.Add(field, format, args...)
		} else {
			errs.AddAt(field, index, format, args...)
		}
	}

	typeID, ok := t.base.types.ID(typecache.KindAddressType, in.Type)
	if !ok {
		add("unknown address type %q", in.Type)
		return nil, nil
	}
	typeName, _ := t.base.types.Name(typecache.KindAddressType, typeID)

	sub := &domain.FieldErrors{}
	out := &domain.Address{
		TypeID:           typeID,
		StreetName:       t.base.languageMap(field+".street", in.Street, sub),
		StreetNumber:     strings.TrimSpace(in.StreetNumber),
		PostOfficeBox:    t.base.languageMap(field+".postOfficeBox", in.PostOfficeBox, sub),
		PostalCode:       strings.TrimSpace(in.PostalCode),
		MunicipalityCode: strings.TrimSpace(in.Municipality),
	}
	for _, e := range *sub {
		add("%s", e.Message)
	}

	switch typeName {
	case addressStreet:
		if len(out.StreetName) == 0 {
			add("street address requires a street name")
		}
	case addressPostOfficeBox:
		if len(out.PostOfficeBox) == 0 {
			add("post office box address requires a box")
		}
	default:
		return out, nil
	}

	if out.PostalCode == "" {
		add("%s address requires a postal code", typeName)
		return out, nil
	}

	if out.MunicipalityCode != "" {
		if _, ok := t.postal.Municipality(out.MunicipalityCode); !ok {
			add("unknown municipality %q", out.MunicipalityCode)
		}
		return out, nil
	}

	code, found, err := t.postal.MunicipalityCode(ctx, out.PostalCode)
	if err != nil {
		return nil, fmt.Errorf("resolve postal code %s: %w", out.PostalCode, err)
	}
	if !found {
		add("unknown postal code %q", out.PostalCode)
		return out, nil
	}
	out.MunicipalityCode = code
	return out, nil
}

func (t *addressTranslator) toExternal(a *domain.Address) *AddressDTO {
	if a == nil {
		return nil
	}
	typeName, _ := t.base.types.Name(typecache.KindAddressType, a.TypeID)
	return &AddressDTO{
		Type:          typeName,
		Street:        languageItems(a.StreetName),
		StreetNumber:  a.StreetNumber,
		PostOfficeBox: languageItems(a.PostOfficeBox),
		PostalCode:    a.PostalCode,
		Municipality:  a.MunicipalityCode,
	}
}
