package connections

import (
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
)

// validateFlags checks the delete-all flags and reports whether a full clear
// was requested.
func validateFlags(relations []Relation, opts Options) (bool, error) {
	if opts.Direction == ServiceToChannels && opts.DeleteAllServiceRelations {
		return false, domain.Invalid("deleteAllServiceRelations", "not valid when editing the channels of a service")
	}
	if opts.Direction == ChannelToServices && opts.DeleteAllChannelRelations {
		return false, domain.Invalid("deleteAllChannelRelations", "not valid when editing the services of a channel")
	}

	deleteAll := opts.DeleteAllChannelRelations || opts.DeleteAllServiceRelations
	if deleteAll && len(relations) > 0 {
		field := "deleteAllChannelRelations"
		if opts.DeleteAllServiceRelations {
			field = "deleteAllServiceRelations"
		}
		return false, domain.Invalid(field, "cannot be combined with a relation list")
	}
	return deleteAll, nil
}

// validateRelations rejects malformed addressing and repeated counterparts.
// Nothing is looked up, so the check is independent of stored state.
func validateRelations(relations []Relation) error {
	byID := make(map[uuid.UUID]int, len(relations))
	bySource := make(map[string]int, len(relations))

	for i, rel := range relations {
		hasID := rel.ID != uuid.Nil
		hasSource := rel.SourceID != ""

		switch {
		case hasID && hasSource:
			return domain.InvalidAt("relations", i, "address the counterpart by id or by source id, not both")
		case !hasID && !hasSource:
			return domain.InvalidAt("relations", i, "counterpart id or source id is required")
		case hasID:
			if first, dup := byID[rel.ID]; dup {
				return domain.InvalidAt("relations", i, "counterpart %s is already given in entry %d", rel.ID, first)
			}
			byID[rel.ID] = i
		default:
			if first, dup := bySource[rel.SourceID]; dup {
				return domain.InvalidAt("relations", i, "source id %q is already given in entry %d", rel.SourceID, first)
			}
			bySource[rel.SourceID] = i
		}
	}
	return nil
}
