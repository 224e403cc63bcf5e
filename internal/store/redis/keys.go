package redis

import "fmt"

const (
	// KeyPrefixPostal is the prefix for postal code -> municipality code keys
	KeyPrefixPostal = "catalog:postal:"
	// KeyPrefixMunicipality is the prefix for municipality keys
	KeyPrefixMunicipality = "catalog:municipality:"
	// KeyAllPostalCodes is the key for the set of all known postal codes
	KeyAllPostalCodes = "catalog:postal-codes:all"
)

// PostalKey returns the Redis key for a postal code
func PostalKey(code string) string {
	return KeyPrefixPostal + code
}

// MunicipalityKey returns the Redis key for a municipality by code
func MunicipalityKey(code string) string {
	return KeyPrefixMunicipality + code
}

// AllPostalCodesKey returns the key for the set of all postal codes
func AllPostalCodesKey() string {
	return KeyAllPostalCodes
}

// ExtractPostalCode extracts the postal code from a Redis key
func ExtractPostalCode(key string) (string, error) {
	if len(key) <= len(KeyPrefixPostal) {
		return "", fmt.Errorf("invalid postal key: %s", key)
	}
	return key[len(KeyPrefixPostal):], nil
}
