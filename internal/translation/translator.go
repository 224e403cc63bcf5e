// Package translation converts between the external API shapes of versions
// V7 to V11 and the internal version model. Each (channel type, API version)
// pair has its own registered translator composed of a shared base part and a
// type-specific payload part.
package translation

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
)

type key struct {
	channelType domain.ChannelType
	version     int
}

type channelTranslator struct {
	policy  Policy
	base    *baseTranslator
	payload payload
}

// Translator is stateless after construction and safe for concurrent use.
type Translator struct {
	types    *typecache.Cache
	base     *baseTranslator
	address  *addressTranslator
	channels map[key]*channelTranslator
}

func New(types *typecache.Cache, postal PostalLookup) *Translator {
	base := &baseTranslator{types: types}
	address := &addressTranslator{base: base, postal: postal}

	t := &Translator{
		types:    types,
		base:     base,
		address:  address,
		channels: make(map[key]*channelTranslator),
	}

	payloads := []payload{
		electronicPayload{base: base},
		phonePayload{base: base},
		printableFormPayload{address: address},
		serviceLocationPayload{address: address},
		webPagePayload{base: base},
	}
	for _, pl := range payloads {
		for v := channelFloor; v <= MaxVersion; v++ {
			t.channels[key{pl.channelType(), v}] = &channelTranslator{
				policy:  Policy{Version: v},
				base:    base,
				payload: pl,
			}
		}
	}
	return t
}

func (t *Translator) channel(channelType domain.ChannelType, version int) (*channelTranslator, error) {
	if err := CheckVersion(domain.KindServiceChannel, version); err != nil {
		return nil, err
	}
	ct, ok := t.channels[key{channelType, version}]
	if !ok {
		return nil, domain.Invalid("serviceChannelType", "unknown channel type %q", channelType)
	}
	return ct, nil
}

// ChannelToInternal validates a channel request for one API version and turns
// it into a draft.
func (t *Translator) ChannelToInternal(ctx context.Context, version int, channelType domain.ChannelType, in *ChannelIn) (*domain.VersionDraft, error) {
	ct, err := t.channel(channelType, version)
	if err != nil {
		return nil, err
	}

	var errs domain.FieldErrors

	owned := make(map[Field]bool)
	for _, f := range ct.payload.owns() {
		owned[f] = true
	}
	present := presentChannelFields(in)
	var valid []Field
	for _, f := range present {
		if !owned[f] {
			errs.Add(string(f), "field is not valid for %s channels", channelType)
			continue
		}
		valid = append(valid, f)
	}
	ignored := ct.policy.check(append(valid, ct.base.present(&in.Common)...), &errs)

	draft := &domain.VersionDraft{}
	ct.base.toInternal(domain.KindServiceChannel, &in.Common, draft, &errs)

	content := &domain.ChannelContent{
		TypeID:       t.types.ChannelTypeID(channelType),
		CommonForAll: in.IsVisibleForAll,
	}
	if err := ct.payload.toInternal(ctx, ct.policy, in, ignored, content, &errs); err != nil {
		return nil, err
	}
	draft.Channel = content

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return draft, nil
}

// ChannelToExternal projects a stored channel for one API version.
func (t *Translator) ChannelToExternal(version int, snap *Snapshot) (*ChannelOut, error) {
	v := snap.Version
	if v.Channel == nil {
		return nil, fmt.Errorf("version %s carries no channel content", v.ID)
	}
	channelType := t.types.ChannelType(v.Channel.TypeID)
	ct, err := t.channel(channelType, version)
	if err != nil {
		return nil, err
	}

	out := &ChannelOut{
		ID:                 v.RootID.String(),
		ServiceChannelType: string(channelType),
	}
	out.IsVisibleForAll = v.Channel.CommonForAll
	ct.base.toExternal(ct.policy, snap, &out.Common)
	ct.payload.toExternal(ct.policy, v.Channel, out)
	out.Modified, out.LanguageAvailabilities = ct.base.audit(ct.policy, snap)
	out.Services = t.connectionItems(snap.Connections)
	return out, nil
}

// EntityToInternal translates an organization, service or collection request.
func (t *Translator) EntityToInternal(version int, kind domain.EntityKind, in *EntityIn) (*domain.VersionDraft, error) {
	if kind == domain.KindServiceChannel {
		return nil, domain.Invalid("kind", "channels are translated per channel type")
	}
	if err := CheckVersion(kind, version); err != nil {
		return nil, err
	}

	p := Policy{Version: version}
	var errs domain.FieldErrors
	p.check(t.base.present(&in.Common), &errs)

	draft := &domain.VersionDraft{}
	t.base.toInternal(kind, &in.Common, draft, &errs)

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return draft, nil
}

// EntityToExternal projects a stored organization, service or collection.
func (t *Translator) EntityToExternal(version int, snap *Snapshot) (*EntityOut, error) {
	v := snap.Version
	if err := CheckVersion(v.Kind, version); err != nil {
		return nil, err
	}

	p := Policy{Version: version}
	out := &EntityOut{ID: v.RootID.String(), Kind: string(v.Kind)}
	t.base.toExternal(p, snap, &out.Common)
	out.Modified, out.LanguageAvailabilities = t.base.audit(p, snap)
	out.ServiceChannels = t.connectionItems(snap.Connections)
	return out, nil
}
