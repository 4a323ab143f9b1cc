package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relenghq/shipit/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "1.0", cfg.Releases.L10nExportVersion)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Releases.CurrentESRMajor = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Releases.SpecialMajors = map[string][]string{"seamonkey": {"1.0"}}
	assert.ErrorIs(t, cfg.Validate(), model.ErrUnknownProduct)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipit.yaml")
	data := `
releases:
  current_esr: "45"
  next_esr: "52"
  aurora_version: "49.0a2"
http:
  addr: ":9000"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "45", cfg.Releases.CurrentESRMajor)
	assert.Equal(t, "52", cfg.Releases.NextESRMajor)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	// Unset values keep defaults.
	assert.Equal(t, "1.0", cfg.Releases.L10nExportVersion)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{
		Releases: ReleasesConfig{NextESRMajor: "52"},
		HTTP:     HTTPConfig{Addr: ":9090"},
	})

	assert.Equal(t, "52", cfg.Releases.NextESRMajor)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	// Untouched fields survive the merge.
	assert.Equal(t, "45", cfg.Releases.CurrentESRMajor)

	cfg.Merge(nil)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestClassifierContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Releases.NextESRMajor = "52"

	ctx := cfg.ClassifierContext(model.ProductFirefox)
	assert.Equal(t, "45", ctx.CurrentESRMajor)
	assert.Equal(t, "52", ctx.NextESRMajor)
	assert.Equal(t, []string{"14.0.1"}, ctx.SpecialMajors)

	// No special majors configured for fennec.
	ctx = cfg.ClassifierContext(model.ProductFennec)
	assert.Empty(t, ctx.SpecialMajors)

	contexts := cfg.ClassifierContexts()
	assert.Len(t, contexts, len(model.Products))
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Releases.NextESRMajor = "52"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Releases, loaded.Releases)

	// Unset aurora locales stay unset, not an empty list.
	assert.Nil(t, loaded.Releases.AuroraLocales)
}
