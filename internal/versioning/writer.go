package versioning

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
)

// Store is the storage surface version writes need.
type Store interface {
	Reader
	InsertRoot(root *domain.Root) error
	MaxSequence(rootID uuid.UUID) (int, error)
	InsertVersion(v *domain.Version, expectedMax int) error
	PutLanguage(l *domain.LanguageAvailability) error
	InsertExternalSource(src *domain.ExternalSource) error
}

// Writer appends versions to roots.
type Writer struct {
	types *typecache.Cache
	now   func() time.Time
	newID func() uuid.UUID
}

func NewWriter(types *typecache.Cache) *Writer {
	return &Writer{
		types: types,
		now:   time.Now,
		newID: uuid.New,
	}
}

// Written is the outcome of CreateVersion.
type Written struct {
	Version   *domain.Version
	Languages []*domain.LanguageAvailability
	Created   bool // a new root was created
}

// CreateVersion stores draft as the next version of its root, creating the root
// when draft.RootID is nil. Each carried language starts as Modified when it is
// already published on another version of the root, Draft otherwise.
func (w *Writer) CreateVersion(tx Store, caller domain.Caller, draft *domain.VersionDraft) (*Written, error) {
	if !caller.Identified() {
		return nil, domain.RelationNotFound("writes require an identified caller")
	}

	languages, err := w.validate(draft)
	if err != nil {
		return nil, err
	}

	now := w.now().UTC()
	out := &Written{}

	rootID := draft.RootID
	if rootID == uuid.Nil {
		rootID = w.newID()
		if err := tx.InsertRoot(&domain.Root{ID: rootID, Kind: draft.Kind, CreatedAt: now, CreatedBy: caller.UserName}); err != nil {
			return nil, err
		}
		out.Created = true
	} else {
		root, err := tx.Root(rootID)
		if err != nil {
			return nil, relabel(err, draft.Kind, rootID.String())
		}
		if root.Kind != draft.Kind {
			return nil, domain.NotFound(draft.Kind, rootID.String())
		}
	}

	if draft.SourceID != "" {
		src := &domain.ExternalSource{Kind: draft.Kind, Caller: caller.UserName, SourceID: draft.SourceID, RootID: rootID}
		if err := tx.InsertExternalSource(src); err != nil {
			return nil, err
		}
	}

	current, err := tx.MaxSequence(rootID)
	if err != nil {
		return nil, err
	}
	if draft.ExpectedSequence != nil && *draft.ExpectedSequence != current {
		return nil, domain.Conflict("root %s is at sequence %d, expected %d", rootID, current, *draft.ExpectedSequence)
	}

	publishedElsewhere, err := w.publishedLanguages(tx, rootID)
	if err != nil {
		return nil, err
	}

	v := &domain.Version{
		ID:                    w.newID(),
		RootID:                rootID,
		Kind:                  draft.Kind,
		Sequence:              current + 1,
		OrganizationID:        draft.OrganizationID,
		Names:                 draft.Names,
		Descriptions:          draft.Descriptions,
		AreaInformationTypeID: draft.AreaInformationTypeID,
		Areas:                 draft.Areas,
		Channel:               draft.Channel,
		Modified:              now,
		ModifiedBy:            caller.UserName,
	}

	statuses := make([]domain.PublishingStatus, 0, len(languages))
	for _, lang := range languages {
		status := domain.StatusDraft
		if publishedElsewhere[lang] {
			status = domain.StatusModified
		}
		statuses = append(statuses, status)
		out.Languages = append(out.Languages, &domain.LanguageAvailability{
			VersionID:  v.ID,
			Language:   lang,
			StatusID:   w.types.StatusID(status),
			Modified:   now,
			ModifiedBy: caller.UserName,
		})
	}
	v.StatusID = w.types.StatusID(domain.AggregateStatus(statuses))

	if err := tx.InsertVersion(v, current); err != nil {
		return nil, err
	}
	for _, l := range out.Languages {
		if err := tx.PutLanguage(l); err != nil {
			return nil, err
		}
	}

	out.Version = v
	return out, nil
}

func (w *Writer) validate(draft *domain.VersionDraft) ([]string, error) {
	var errs domain.FieldErrors

	if _, ok := domain.ParseEntityKind(string(draft.Kind)); !ok {
		errs.Add("kind", "unknown entity kind %q", draft.Kind)
	}
	if draft.Kind == domain.KindServiceChannel && draft.Channel == nil {
		errs.Add("serviceChannelType", "channel content is required")
	}

	hasName := false
	for _, n := range draft.Names {
		if strings.TrimSpace(n) != "" {
			hasName = true
			break
		}
	}
	if !hasName {
		errs.Add("names", "at least one name is required")
	}

	languages := draft.Languages
	if len(languages) == 0 {
		languages = contentLanguages(draft)
	}

	seen := make(map[string]bool, len(languages))
	out := make([]string, 0, len(languages))
	for i, lang := range languages {
		id, ok := w.types.ID(typecache.KindLanguage, lang)
		if !ok {
			errs.AddAt("languages", i, "unknown language %q", lang)
			continue
		}
		name, _ := w.types.Name(typecache.KindLanguage, id)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// publishedLanguages collects every language currently Published on any
// version of the root.
func (w *Writer) publishedLanguages(tx Store, rootID uuid.UUID) (map[string]bool, error) {
	versions, err := tx.VersionsOfRoot(rootID)
	if err != nil {
		return nil, err
	}

	published := w.types.StatusID(domain.StatusPublished)
	out := make(map[string]bool)
	for _, v := range versions {
		langs, err := tx.Languages(v.ID)
		if err != nil {
			return nil, err
		}
		for _, l := range langs {
			if l.StatusID == published {
				out[l.Language] = true
			}
		}
	}
	return out, nil
}

func contentLanguages(draft *domain.VersionDraft) []string {
	set := make(map[string]bool)
	for l := range draft.Names {
		set[l] = true
	}
	for l := range draft.Descriptions {
		set[l] = true
	}
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
