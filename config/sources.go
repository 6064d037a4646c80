package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SelectorSet maps scholarship fields to CSS selectors. Selectors are
// comma-separated alternatives tried in order.
type SelectorSet struct {
	Container      string `yaml:"container"`
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Amount         string `yaml:"amount"`
	Deadline       string `yaml:"deadline"`
	Eligibility    string `yaml:"eligibility"`
	ApplicationURL string `yaml:"application_url"`
	Documents      string `yaml:"documents"`
	Category       string `yaml:"category"`
	Level          string `yaml:"level"`
}

// Pagination describes how a listing spans multiple pages.
type Pagination struct {
	Enabled          bool   `yaml:"enabled"`
	NextPageSelector string `yaml:"next_page_selector"`
	MaxPages         int    `yaml:"max_pages"`
}

// SourceDefinition describes one scrape target.
type SourceDefinition struct {
	Name         string      `yaml:"name"`
	URL          string      `yaml:"url"`
	BaseURL      string      `yaml:"base_url"`
	Selectors    SelectorSet `yaml:"selectors"`
	Pagination   Pagination  `yaml:"pagination"`
	WaitFor      string      `yaml:"wait_for"`
	Render       bool        `yaml:"render"`
	DelaySeconds int         `yaml:"delay_seconds"`
	Enabled      *bool       `yaml:"enabled"`
}

// IsEnabled reports whether the source should be scraped. Sources are
// enabled unless explicitly switched off.
func (definition *SourceDefinition) IsEnabled() bool {
	return definition.Enabled == nil || *definition.Enabled
}

// Delay returns the per-request delay for this source, falling back to the
// given default when unset.
func (definition *SourceDefinition) Delay(fallback time.Duration) time.Duration {
	if definition.DelaySeconds > 0 {
		return time.Duration(definition.DelaySeconds) * time.Second
	}
	return fallback
}

type sourcesFile struct {
	Sources []SourceDefinition `yaml:"sources"`
}

// LoadSources reads and validates source definitions from a YAML file.
// Definitions that fail validation abort the load so a bad edit cannot
// silently drop a source.
func LoadSources(path string) ([]SourceDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file %s: %w", path, err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing sources file %s: %w", path, err)
	}

	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s defines no sources", path)
	}

	seen := make(map[string]struct{}, len(file.Sources))
	for index := range file.Sources {
		definition := &file.Sources[index]
		if err := validateSource(definition); err != nil {
			return nil, fmt.Errorf("source %d (%s): %w", index, definition.Name, err)
		}
		if _, dup := seen[definition.Name]; dup {
			return nil, fmt.Errorf("duplicate source name %q", definition.Name)
		}
		seen[definition.Name] = struct{}{}
	}

	return file.Sources, nil
}

func validateSource(definition *SourceDefinition) error {
	if strings.TrimSpace(definition.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.HasPrefix(definition.URL, "http://") && !strings.HasPrefix(definition.URL, "https://") {
		return fmt.Errorf("url must be absolute, got %q", definition.URL)
	}
	if definition.Selectors.Title == "" {
		return fmt.Errorf("selectors.title is required")
	}
	if definition.Pagination.Enabled && definition.Pagination.NextPageSelector == "" {
		return fmt.Errorf("pagination.next_page_selector is required when pagination is enabled")
	}
	if definition.Pagination.MaxPages < 0 {
		return fmt.Errorf("pagination.max_pages must not be negative")
	}
	if definition.Pagination.Enabled && definition.Pagination.MaxPages == 0 {
		definition.Pagination.MaxPages = DefaultScrapeConfig().MaxPages
	}
	return nil
}
