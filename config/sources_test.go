package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSourcesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSourcesValid(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: example.gov.in
    url: https://example.gov.in/schemes
    selectors:
      title: ".title, h1"
      description: ".description"
    pagination:
      enabled: true
      next_page_selector: ".next"
`)

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 1)

	source := sources[0]
	assert.Equal(t, "example.gov.in", source.Name)
	assert.True(t, source.IsEnabled())
	assert.Equal(t, DefaultScrapeConfig().MaxPages, source.Pagination.MaxPages)
	assert.Equal(t, 2*time.Second, source.Delay(2*time.Second))
}

func TestLoadSourcesRejectsMissingTitleSelector(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: broken
    url: https://example.gov.in
    selectors:
      description: ".description"
`)

	_, err := LoadSources(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "selectors.title")
}

func TestLoadSourcesRejectsRelativeURL(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: broken
    url: /schemes
    selectors:
      title: h1
`)

	_, err := LoadSources(path)
	assert.Error(t, err)
}

func TestLoadSourcesRejectsDuplicateNames(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  - name: twice
    url: https://a.example.in
    selectors:
      title: h1
  - name: twice
    url: https://b.example.in
    selectors:
      title: h1
`)

	_, err := LoadSources(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestSourceDelayOverride(t *testing.T) {
	definition := SourceDefinition{DelaySeconds: 5}
	assert.Equal(t, 5*time.Second, definition.Delay(2*time.Second))

	definition.DelaySeconds = 0
	assert.Equal(t, 2*time.Second, definition.Delay(2*time.Second))
}

func TestDisabledSource(t *testing.T) {
	disabled := false
	definition := SourceDefinition{Enabled: &disabled}
	assert.False(t, definition.IsEnabled())
}
