package translation

import (
	"github.com/MrSnakeDoc/catalog/internal/domain"
)

const (
	// MaxVersion is the newest API version.
	MaxVersion = 11

	channelFloor = 8
	generalFloor = 7
)

// Floor returns the oldest API version served for kind.
func Floor(kind domain.EntityKind) int {
	if kind == domain.KindServiceChannel {
		return channelFloor
	}
	return generalFloor
}

// CheckVersion fails with UnsupportedVersion when version is outside the range
// served for kind.
func CheckVersion(kind domain.EntityKind, version int) error {
	if version < Floor(kind) || version > MaxVersion {
		return domain.UnsupportedVersion(kind, version, Floor(kind), MaxVersion)
	}
	return nil
}

// Field names an external field whose presence depends on the API version.
type Field string

const (
	FieldAreas                  Field = "areas"
	FieldURLs                   Field = "urls"
	FieldAccessibility          Field = "accessibilityClassification"
	FieldSignatureQuantity      Field = "signatureQuantity"
	FieldRequiresSignature      Field = "requiresSignature"
	FieldRequiresAuthentication Field = "requiresAuthentication"
	FieldPhoneNumbers           Field = "phoneNumbers"
	FieldFormIdentifier         Field = "formIdentifier"
	FieldDeliveryAddress        Field = "deliveryAddress"
	FieldAddresses              Field = "addresses"
	FieldModified               Field = "modified"
	FieldLanguageAvailabilities Field = "languageAvailabilities"
)

type removal int

const (
	// rejectRemoved fails requests that still send a removed field.
	rejectRemoved removal = iota
	// ignoreRemoved drops the field and stores its default.
	ignoreRemoved
)

// lifespan is the version range a field exists in: [since, until).
// until == 0 means the field is still present in MaxVersion.
type lifespan struct {
	since   int
	until   int
	removal removal
}

var history = map[Field]lifespan{
	FieldAreas:                  {since: 8},
	FieldAccessibility:          {since: 9},
	FieldSignatureQuantity:      {since: 7, until: 10, removal: rejectRemoved},
	FieldRequiresSignature:      {since: 7, until: 11, removal: ignoreRemoved},
	FieldModified:               {since: 10},
	FieldLanguageAvailabilities: {since: 11},
}

// Policy answers field questions for one API version.
type Policy struct {
	Version int
}

// Has reports whether f exists in the policy's version.
func (p Policy) Has(f Field) bool {
	l, ok := history[f]
	if !ok {
		return true
	}
	return p.Version >= l.since && (l.until == 0 || p.Version < l.until)
}

// check validates the fields present in a request. Fields removed with
// ignoreRemoved are returned so the caller stores their default instead.
func (p Policy) check(present []Field, errs *domain.FieldErrors) map[Field]bool {
	ignored := make(map[Field]bool)
	for _, f := range present {
		if p.Has(f) {
			continue
		}
		l := history[f]
		if l.until != 0 && p.Version >= l.until {
			if l.removal == ignoreRemoved {
				ignored[f] = true
				continue
			}
			errs.Add(string(f), "field was removed in API version %d", l.until)
			continue
		}
		errs.Add(string(f), "field is not available before API version %d", l.since)
	}
	return ignored
}
