package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed themes.yaml
var defaultThemesYAML []byte

// DefaultThemes returns the themes seeded into a fresh catalog.
func DefaultThemes() ([]Theme, error) {
	return ParseThemes(defaultThemesYAML)
}

// ParseThemes decodes a YAML list of themes. Slugs are derived from names when
// missing and sanitised otherwise.
func ParseThemes(data []byte) ([]Theme, error) {
	var themes []Theme
	if err := yaml.Unmarshal(data, &themes); err != nil {
		return nil, fmt.Errorf("failed to parse themes: %w", err)
	}

	for i := range themes {
		if themes[i].Name == "" {
			return nil, fmt.Errorf("theme %d has no name", i+1)
		}
		if themes[i].Slug == "" {
			themes[i].Slug = themes[i].Name
		}
		themes[i].Slug = Slugify(themes[i].Slug)
	}
	return themes, nil
}

// LoadThemesFile reads and parses a YAML theme file.
func LoadThemesFile(path string) ([]Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes file: %w", err)
	}
	return ParseThemes(data)
}
