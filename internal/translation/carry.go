package translation

import (
	"github.com/MrSnakeDoc/catalog/internal/domain"
)

// hidden reports whether f cannot be expressed in the policy's version and its
// stored value must survive an update. Fields dropped with ignoreRemoved are
// not hidden: the update stores their default.
func (p Policy) hidden(f Field) bool {
	if p.Has(f) {
		return false
	}
	l := history[f]
	removed := l.until != 0 && p.Version >= l.until
	return !(removed && l.removal == ignoreRemoved)
}

// CarryHiddenFields copies into draft what current stores in fields the API
// version cannot express, so an update through an older version leaves them
// as they were.
func CarryHiddenFields(version int, current *domain.Version, draft *domain.VersionDraft) {
	if current == nil || draft == nil {
		return
	}
	p := Policy{Version: version}

	if p.hidden(FieldAreas) {
		draft.AreaInformationTypeID = current.AreaInformationTypeID
		draft.Areas = append([]domain.Area(nil), current.Areas...)
	}

	from, to := current.Channel, draft.Channel
	if from == nil || to == nil || from.TypeID != to.TypeID {
		return
	}
	if p.hidden(FieldAccessibility) {
		if from.WebPage != nil && to.WebPage != nil {
			to.WebPage.Accessibility = append([]domain.Accessibility(nil), from.WebPage.Accessibility...)
		}
		if from.Electronic != nil && to.Electronic != nil {
			to.Electronic.Accessibility = append([]domain.Accessibility(nil), from.Electronic.Accessibility...)
		}
	}
	if p.hidden(FieldSignatureQuantity) && from.Electronic != nil && to.Electronic != nil {
		to.Electronic.SignatureQuantity = from.Electronic.SignatureQuantity
	}
}
