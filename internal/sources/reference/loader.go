package reference

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultData []byte

// Loader reads the reference data file. An empty path selects the built-in
// data set.
type Loader struct {
	filePath string
}

// NewLoader creates a new reference loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the reference file
func (l *Loader) Load() (Config, error) {
	data := defaultData
	if l.filePath != "" {
		raw, err := os.ReadFile(l.filePath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read reference file: %w", err)
		}
		data = raw
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse reference yaml: %w", err)
	}

	return config, nil
}
