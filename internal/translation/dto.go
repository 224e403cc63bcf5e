package translation

import (
	"time"

	"github.com/MrSnakeDoc/catalog/internal/domain"
)

// LanguageItem is a localized value.
type LanguageItem struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type AreaDTO struct {
	Type      string   `json:"type"`
	AreaCodes []string `json:"areaCodes"`
}

type AccessibilityDTO struct {
	Language string `json:"language"`
	Level    string `json:"accessibilityClassificationLevel"`
	URL      string `json:"accessibilityStatementWebPage,omitempty"`
}

type PhoneDTO struct {
	Number            string `json:"number"`
	PrefixNumber      string `json:"prefixNumber,omitempty"`
	Language          string `json:"language"`
	Type              string `json:"type"`
	ServiceChargeType string `json:"serviceChargeType"`
	ChargeDescription string `json:"chargeDescription,omitempty"`
}

type AddressDTO struct {
	Type          string         `json:"type"`
	Street        []LanguageItem `json:"street,omitempty"`
	StreetNumber  string         `json:"streetNumber,omitempty"`
	PostOfficeBox []LanguageItem `json:"postOfficeBox,omitempty"`
	PostalCode    string         `json:"postalCode,omitempty"`
	Municipality  string         `json:"municipality,omitempty"`
}

type LanguageAvailabilityDTO struct {
	Language         string     `json:"language"`
	PublishingStatus string     `json:"publishingStatus"`
	Modified         time.Time  `json:"modified"`
	ModifiedBy       string     `json:"modifiedBy,omitempty"`
	PublishedAt      *time.Time `json:"publishedAt,omitempty"`
}

// Common holds the fields every entity kind shares.
type Common struct {
	SourceID         string         `json:"sourceId,omitempty"`
	OrganizationID   string         `json:"organizationId,omitempty"`
	Names            []LanguageItem `json:"names"`
	Descriptions     []LanguageItem `json:"descriptions,omitempty"`
	Languages        []string       `json:"languages,omitempty"`
	PublishingStatus string         `json:"publishingStatus,omitempty"`
	AreaType         string         `json:"areaType,omitempty"`
	Areas            []AreaDTO      `json:"areas,omitempty"`
}

// ChannelIn is the superset of every channel type's input fields across all
// API versions. Fields not valid for the addressed type or version are
// rejected during translation.
type ChannelIn struct {
	Common

	IsVisibleForAll bool `json:"isVisibleForAll"`

	URLs                   []LanguageItem     `json:"urls,omitempty"`
	Accessibility          []AccessibilityDTO `json:"accessibilityClassification,omitempty"`
	SignatureQuantity      *int               `json:"signatureQuantity,omitempty"`
	RequiresSignature      *bool              `json:"requiresSignature,omitempty"`
	RequiresAuthentication *bool              `json:"requiresAuthentication,omitempty"`
	PhoneNumbers           []PhoneDTO         `json:"phoneNumbers,omitempty"`
	FormIdentifier         []LanguageItem     `json:"formIdentifier,omitempty"`
	DeliveryAddress        *AddressDTO        `json:"deliveryAddress,omitempty"`
	Addresses              []AddressDTO       `json:"addresses,omitempty"`
}

// ChannelOut is the projection of a stored channel for one API version.
type ChannelOut struct {
	ID                 string `json:"id"`
	ServiceChannelType string `json:"serviceChannelType"`

	ChannelIn

	Modified               *time.Time                `json:"modified,omitempty"`
	LanguageAvailabilities []LanguageAvailabilityDTO `json:"languageAvailabilities,omitempty"`
	Services               []ConnectionOut           `json:"services,omitempty"`
}

// EntityIn is the input of organizations, services and service collections.
type EntityIn struct {
	Common
}

// EntityOut is the projection of a stored organization, service or collection.
type EntityOut struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	EntityIn

	Modified               *time.Time                `json:"modified,omitempty"`
	LanguageAvailabilities []LanguageAvailabilityDTO `json:"languageAvailabilities,omitempty"`
	ServiceChannels        []ConnectionOut           `json:"serviceChannels,omitempty"`
}

// PageOut wraps a page of projected items.
type PageOut[T any] struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	PageCount  int `json:"pageCount"`
	TotalCount int `json:"totalCount"`
	ItemList   []T `json:"itemList"`
}

// Snapshot is everything needed to project one version.
type Snapshot struct {
	Version     *domain.Version
	Languages   []*domain.LanguageAvailability
	SourceID    string
	Connections []*domain.Connection
}

// PublishingOut reports a lifecycle change of one root.
type PublishingOut struct {
	ID         string              `json:"id"`
	VersionID  string              `json:"versionId,omitempty"`
	Languages  []string            `json:"languages,omitempty"`
	Superseded map[string][]string `json:"superseded,omitempty"`
}
