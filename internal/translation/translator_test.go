package translation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/logger"
	"github.com/MrSnakeDoc/catalog/internal/postal"
	"github.com/MrSnakeDoc/catalog/internal/sources/reference"
	"github.com/MrSnakeDoc/catalog/internal/translation"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
)

var orgID = uuid.MustParse("5f1b1a36-0d7e-4ad9-9c47-5b0f2a1e0c11")

func newTranslator(t *testing.T) (*translation.Translator, *typecache.Cache) {
	t.Helper()
	data, err := reference.LoadDefault()
	require.NoError(t, err)
	types, err := typecache.New(data.Taxonomy)
	require.NoError(t, err)
	lookup := postal.New(data.PostalCodes, data.Municipalities, nil, logger.NewNop())
	return translation.New(types, lookup), types
}

// snapshot stores a draft the way the writer would, without touching storage.
func snapshot(types *typecache.Cache, draft *domain.VersionDraft, sourceID string) *translation.Snapshot {
	v := &domain.Version{
		ID:                    uuid.New(),
		RootID:                uuid.New(),
		Kind:                  draft.Kind,
		Sequence:              1,
		StatusID:              types.StatusID(domain.StatusDraft),
		OrganizationID:        draft.OrganizationID,
		Names:                 draft.Names,
		Descriptions:          draft.Descriptions,
		AreaInformationTypeID: draft.AreaInformationTypeID,
		Areas:                 draft.Areas,
		Channel:               draft.Channel,
		Modified:              time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		ModifiedBy:            "tester",
	}
	var langs []*domain.LanguageAvailability
	for _, l := range draft.Languages {
		langs = append(langs, &domain.LanguageAvailability{
			VersionID: v.ID,
			Language:  l,
			StatusID:  types.StatusID(domain.StatusDraft),
			Modified:  v.Modified,
		})
	}
	return &translation.Snapshot{Version: v, Languages: langs, SourceID: sourceID}
}

func common() translation.Common {
	return translation.Common{
		SourceID:         "src-1",
		OrganizationID:   orgID.String(),
		Names:            []translation.LanguageItem{{Language: "en", Value: "Desk"}, {Language: "fi", Value: "Palvelupiste"}},
		Languages:        []string{"en", "fi"},
		PublishingStatus: string(domain.StatusDraft),
		AreaType:         "AreaType",
		Areas:            []translation.AreaDTO{{Type: "Municipality", AreaCodes: []string{"049", "091"}}},
	}
}

func ptr[T any](v T) *T { return &v }

func TestChannelRoundTrip(t *testing.T) {
	tr, types := newTranslator(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		channelType domain.ChannelType
		versions    []int
		in          translation.ChannelIn
	}{
		{
			name:        "web page without accessibility",
			channelType: domain.ChannelWebPage,
			versions:    []int{8, 9, 10, 11},
			in: translation.ChannelIn{
				Common:          common(),
				IsVisibleForAll: true,
				URLs:            []translation.LanguageItem{{Language: "fi", Value: "https://palvelu.fi"}},
			},
		},
		{
			name:        "web page with accessibility",
			channelType: domain.ChannelWebPage,
			versions:    []int{9, 10, 11},
			in: translation.ChannelIn{
				Common: common(),
				URLs:   []translation.LanguageItem{{Language: "fi", Value: "https://palvelu.fi"}},
				Accessibility: []translation.AccessibilityDTO{
					{Language: "fi", Level: "PartiallyCompliant", URL: "https://palvelu.fi/saavutettavuus"},
				},
			},
		},
		{
			name:        "phone",
			channelType: domain.ChannelPhone,
			versions:    []int{8, 11},
			in: translation.ChannelIn{
				Common: common(),
				PhoneNumbers: []translation.PhoneDTO{
					{Number: "0101234", PrefixNumber: "+358", Language: "fi", Type: "Phone", ServiceChargeType: "Charged", ChargeDescription: "pvm"},
				},
			},
		},
		{
			name:        "printable form",
			channelType: domain.ChannelPrintableForm,
			versions:    []int{8, 11},
			in: translation.ChannelIn{
				Common:         common(),
				FormIdentifier: []translation.LanguageItem{{Language: "fi", Value: "LOM-1"}},
				DeliveryAddress: &translation.AddressDTO{
					Type:          "PostOfficeBox",
					PostOfficeBox: []translation.LanguageItem{{Language: "fi", Value: "PL 12"}},
					PostalCode:    "00100",
					Municipality:  "049",
				},
			},
		},
		{
			name:        "service location",
			channelType: domain.ChannelServiceLocation,
			versions:    []int{8, 10, 11},
			in: translation.ChannelIn{
				Common: common(),
				Addresses: []translation.AddressDTO{
					{
						Type:         "Street",
						Street:       []translation.LanguageItem{{Language: "fi", Value: "Kauppakatu"}},
						StreetNumber: "3",
						PostalCode:   "33100",
						Municipality: "837",
					},
				},
			},
		},
		{
			name:        "electronic before removals",
			channelType: domain.ChannelElectronic,
			versions:    []int{8, 9},
			in: translation.ChannelIn{
				Common:                 common(),
				URLs:                   []translation.LanguageItem{{Language: "fi", Value: "https://asiointi.fi"}},
				SignatureQuantity:      ptr(2),
				RequiresSignature:      ptr(true),
				RequiresAuthentication: ptr(true),
			},
		},
		{
			name:        "electronic in version 11",
			channelType: domain.ChannelElectronic,
			versions:    []int{11},
			in: translation.ChannelIn{
				Common:                 common(),
				URLs:                   []translation.LanguageItem{{Language: "fi", Value: "https://asiointi.fi"}},
				RequiresAuthentication: ptr(false),
			},
		},
	}

	for _, tt := range tests {
		for _, version := range tt.versions {
			tt, version := tt, version
			t.Run(tt.name, func(t *testing.T) {
				draft, err := tr.ChannelToInternal(ctx, version, tt.channelType, &tt.in)
				require.NoError(t, err, "version %d", version)

				out, err := tr.ChannelToExternal(version, snapshot(types, draft, tt.in.SourceID))
				require.NoError(t, err)
				assert.Equal(t, string(tt.channelType), out.ServiceChannelType)
				assert.Equal(t, tt.in, out.ChannelIn, "version %d", version)
			})
		}
	}
}

func TestChannelAuditFieldsFollowVersion(t *testing.T) {
	tr, types := newTranslator(t)
	in := translation.ChannelIn{
		Common: common(),
		URLs:   []translation.LanguageItem{{Language: "fi", Value: "https://palvelu.fi"}},
	}
	draft, err := tr.ChannelToInternal(context.Background(), 11, domain.ChannelWebPage, &in)
	require.NoError(t, err)
	snap := snapshot(types, draft, "")

	v8, err := tr.ChannelToExternal(8, snap)
	require.NoError(t, err)
	assert.Nil(t, v8.Modified)
	assert.Nil(t, v8.LanguageAvailabilities)

	v10, err := tr.ChannelToExternal(10, snap)
	require.NoError(t, err)
	require.NotNil(t, v10.Modified)
	assert.Equal(t, snap.Version.Modified, *v10.Modified)
	assert.Nil(t, v10.LanguageAvailabilities)

	v11, err := tr.ChannelToExternal(11, snap)
	require.NoError(t, err)
	require.Len(t, v11.LanguageAvailabilities, 2)
	assert.Equal(t, "en", v11.LanguageAvailabilities[0].Language)
	assert.Equal(t, string(domain.StatusDraft), v11.LanguageAvailabilities[0].PublishingStatus)
}

func TestAccessibilityHiddenBeforeVersion9(t *testing.T) {
	tr, types := newTranslator(t)
	in := translation.ChannelIn{
		Common:        common(),
		URLs:          []translation.LanguageItem{{Language: "fi", Value: "https://palvelu.fi"}},
		Accessibility: []translation.AccessibilityDTO{{Language: "fi", Level: "Unknown"}},
	}
	draft, err := tr.ChannelToInternal(context.Background(), 11, domain.ChannelWebPage, &in)
	require.NoError(t, err)

	v8, err := tr.ChannelToExternal(8, snapshot(types, draft, ""))
	require.NoError(t, err)
	assert.Nil(t, v8.Accessibility)

	_, err = tr.ChannelToInternal(context.Background(), 8, domain.ChannelWebPage, &in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChannelVersionFloor(t *testing.T) {
	tr, _ := newTranslator(t)
	in := translation.ChannelIn{
		Common: common(),
		URLs:   []translation.LanguageItem{{Language: "fi", Value: "https://palvelu.fi"}},
	}

	for _, version := range []int{6, 7, 12} {
		_, err := tr.ChannelToInternal(context.Background(), version, domain.ChannelWebPage, &in)
		assert.ErrorIs(t, err, domain.ErrUnsupportedVersion, "version %d", version)
	}
}

func TestEntityVersionFloor(t *testing.T) {
	tr, _ := newTranslator(t)
	in := translation.EntityIn{Common: translation.Common{
		OrganizationID: orgID.String(),
		Names:          []translation.LanguageItem{{Language: "fi", Value: "Palvelu"}},
	}}

	_, err := tr.EntityToInternal(6, domain.KindService, &in)
	assert.ErrorIs(t, err, domain.ErrUnsupportedVersion)

	draft, err := tr.EntityToInternal(7, domain.KindService, &in)
	require.NoError(t, err)
	assert.Equal(t, domain.KindService, draft.Kind)

	// areas arrived in version 8
	in.Areas = []translation.AreaDTO{{Type: "Municipality", AreaCodes: []string{"049"}}}
	_, err = tr.EntityToInternal(7, domain.KindService, &in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRemovedElectronicFields(t *testing.T) {
	tr, types := newTranslator(t)
	ctx := context.Background()
	base := func() translation.ChannelIn {
		return translation.ChannelIn{
			Common: common(),
			URLs:   []translation.LanguageItem{{Language: "fi", Value: "https://asiointi.fi"}},
		}
	}

	t.Run("signature quantity rejected from 10", func(t *testing.T) {
		in := base()
		in.SignatureQuantity = ptr(1)
		_, err := tr.ChannelToInternal(ctx, 10, domain.ChannelElectronic, &in)
		require.ErrorIs(t, err, domain.ErrValidation)

		var derr *domain.Error
		require.ErrorAs(t, err, &derr)
		assert.Contains(t, derr.Error(), "signatureQuantity")
	})

	t.Run("requires signature ignored in 11", func(t *testing.T) {
		in := base()
		in.RequiresSignature = ptr(true)
		draft, err := tr.ChannelToInternal(ctx, 11, domain.ChannelElectronic, &in)
		require.NoError(t, err)
		assert.False(t, draft.Channel.Electronic.RequiresSignature)

		out, err := tr.ChannelToExternal(11, snapshot(types, draft, ""))
		require.NoError(t, err)
		assert.Nil(t, out.RequiresSignature)
		assert.Nil(t, out.SignatureQuantity)
	})

	t.Run("version 10 still emits requires signature", func(t *testing.T) {
		in := base()
		in.RequiresSignature = ptr(true)
		draft, err := tr.ChannelToInternal(ctx, 10, domain.ChannelElectronic, &in)
		require.NoError(t, err)

		out, err := tr.ChannelToExternal(10, snapshot(types, draft, ""))
		require.NoError(t, err)
		require.NotNil(t, out.RequiresSignature)
		assert.True(t, *out.RequiresSignature)
		assert.Nil(t, out.SignatureQuantity)
	})
}

func TestFieldsOfOtherChannelTypesRejected(t *testing.T) {
	tr, _ := newTranslator(t)
	in := translation.ChannelIn{
		Common: common(),
		URLs:   []translation.LanguageItem{{Language: "fi", Value: "https://palvelu.fi"}},
		PhoneNumbers: []translation.PhoneDTO{
			{Number: "0101234", Language: "fi", Type: "Phone", ServiceChargeType: "Charged"},
		},
	}

	_, err := tr.ChannelToInternal(context.Background(), 11, domain.ChannelWebPage, &in)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "phoneNumbers")
}

func TestMunicipalityFilledFromPostalCode(t *testing.T) {
	tr, _ := newTranslator(t)
	in := translation.ChannelIn{
		Common: common(),
		Addresses: []translation.AddressDTO{{
			Type:       "Street",
			Street:     []translation.LanguageItem{{Language: "fi", Value: "Mannerheimintie"}},
			PostalCode: "00100",
		}},
	}

	draft, err := tr.ChannelToInternal(context.Background(), 11, domain.ChannelServiceLocation, &in)
	require.NoError(t, err)
	require.Len(t, draft.Channel.ServiceLocation.Addresses, 1)
	assert.Equal(t, "049", draft.Channel.ServiceLocation.Addresses[0].MunicipalityCode)

	in.Addresses[0].PostalCode = "99999"
	_, err = tr.ChannelToInternal(context.Background(), 11, domain.ChannelServiceLocation, &in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPublishingStatusRequest(t *testing.T) {
	tr, _ := newTranslator(t)
	in := translation.EntityIn{Common: translation.Common{
		OrganizationID:   orgID.String(),
		Names:            []translation.LanguageItem{{Language: "fi", Value: "Palvelu"}},
		PublishingStatus: string(domain.StatusPublished),
	}}

	draft, err := tr.EntityToInternal(11, domain.KindService, &in)
	require.NoError(t, err)
	assert.True(t, draft.Publish)

	in.PublishingStatus = string(domain.StatusOldPublished)
	_, err = tr.EntityToInternal(11, domain.KindService, &in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEntityWithoutOrganization(t *testing.T) {
	tr, _ := newTranslator(t)
	in := translation.EntityIn{Common: translation.Common{
		Names: []translation.LanguageItem{{Language: "fi", Value: "Virasto"}},
	}}

	_, err := tr.EntityToInternal(11, domain.KindOrganization, &in)
	assert.NoError(t, err)

	_, err = tr.EntityToInternal(11, domain.KindService, &in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
