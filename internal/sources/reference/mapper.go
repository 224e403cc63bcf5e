package reference

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
)

// Data is the mapped, ready-to-use reference data.
type Data struct {
	Taxonomy       map[typecache.Kind][]string
	Municipalities map[string]domain.Municipality // code -> municipality
	PostalCodes    map[string]string              // postal code -> municipality code
}

// Mapper converts a parsed reference file into Data
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map validates cross references and builds lookup tables.
func (m *Mapper) Map(config Config) (*Data, error) {
	if len(config.Types) == 0 {
		return nil, fmt.Errorf("no types found in reference config")
	}

	data := &Data{
		Taxonomy:       make(map[typecache.Kind][]string, len(config.Types)),
		Municipalities: make(map[string]domain.Municipality, len(config.Municipalities)),
		PostalCodes:    make(map[string]string, len(config.PostalCodes)),
	}

	for kind, names := range config.Types {
		data.Taxonomy[typecache.Kind(kind)] = append([]string(nil), names...)
	}

	for _, mp := range config.Municipalities {
		code := strings.TrimSpace(mp.Code)
		if code == "" {
			continue
		}
		data.Municipalities[code] = domain.Municipality{Code: code, Names: mp.Names}
	}

	for _, pc := range config.PostalCodes {
		code := strings.TrimSpace(pc.Code)
		if code == "" {
			continue
		}
		if _, ok := data.Municipalities[pc.Municipality]; !ok {
			return nil, fmt.Errorf("postal code %s references unknown municipality %q", code, pc.Municipality)
		}
		data.PostalCodes[code] = pc.Municipality
	}

	return data, nil
}

// LoadDefault loads and maps the built-in reference data.
func LoadDefault() (*Data, error) {
	config, err := NewLoader("").Load()
	if err != nil {
		return nil, err
	}
	return NewMapper().Map(config)
}
