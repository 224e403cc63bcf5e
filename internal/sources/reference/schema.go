package reference

// Config is the top-level structure of a reference data file.
type Config struct {
	// Types maps a type-cache kind to its enumerated names.
	Types          map[string][]string `yaml:"types"`
	Municipalities []MunicipalityProps `yaml:"municipalities"`
	PostalCodes    []PostalCodeProps   `yaml:"postalCodes"`
}

type MunicipalityProps struct {
	Code  string            `yaml:"code"`
	Names map[string]string `yaml:"names,omitempty"`
}

type PostalCodeProps struct {
	Code         string `yaml:"code"`
	Municipality string `yaml:"municipality"`
}
