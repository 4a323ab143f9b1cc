// Package config provides configuration loading and management for shipit.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/relenghq/shipit/classify"
	"github.com/relenghq/shipit/model"
)

// Config represents the complete shipit configuration
type Config struct {
	Releases ReleasesConfig `yaml:"releases"`
	NATS     NATSConfig     `yaml:"nats"`
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
}

// ReleasesConfig configures the version channels and per-product quirks
type ReleasesConfig struct {
	// CurrentESRMajor is the major version of the current ESR line (e.g. "45")
	CurrentESRMajor string `yaml:"current_esr"`
	// NextESRMajor is the major version of the next, overlapping ESR line.
	// Empty means only one ESR line is maintained.
	NextESRMajor string `yaml:"next_esr"`
	// AuroraVersion is the version currently on the aurora channel
	AuroraVersion string `yaml:"aurora_version"`
	// AuroraLocales is the list of locales shipped on aurora
	AuroraLocales []string `yaml:"aurora_locales,omitempty"`
	// OlderMajorVersion is the previous major version still exported
	OlderMajorVersion string `yaml:"older_major_version"`
	// SpecialMajors maps a product to version strings categorized as major
	// releases despite not following X.Y numbering (e.g. "14.0.1")
	SpecialMajors map[string][]string `yaml:"special_majors"`
	// L10nExportVersion is the format version stamped on l10n export documents
	L10nExportVersion string `yaml:"l10n_export_version"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL
	URL string `yaml:"url"`
	// EventSubject is the subject build events arrive on
	EventSubject string `yaml:"event_subject"`
}

// HTTPConfig configures the JSON export server
type HTTPConfig struct {
	// Addr is the listen address (default :8080)
	Addr string `yaml:"addr"`
	// RegionsDir is the directory of static region JSON files
	RegionsDir string `yaml:"regions_dir"`
}

// StoreConfig configures release/event storage
type StoreConfig struct {
	// SnapshotPath is a YAML snapshot file used instead of NATS KV when set
	SnapshotPath string `yaml:"snapshot"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Releases: ReleasesConfig{
			CurrentESRMajor:   "45",
			NextESRMajor:      "", // Single-ESR mode
			AuroraVersion:     "48.0a2",
			OlderMajorVersion: "3.6.28",
			SpecialMajors: map[string][]string{
				"firefox": {"14.0.1"},
			},
			L10nExportVersion: "1.0",
		},
		NATS: NATSConfig{
			URL:          "nats://127.0.0.1:4222",
			EventSubject: "shipit.events.>",
		},
		HTTP: HTTPConfig{
			Addr:       ":8080",
			RegionsDir: "static/regions",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Releases.CurrentESRMajor == "" {
		return fmt.Errorf("releases.current_esr is required")
	}
	if c.Releases.L10nExportVersion == "" {
		return fmt.Errorf("releases.l10n_export_version is required")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	for product := range c.Releases.SpecialMajors {
		if _, err := model.ParseProduct(product); err != nil {
			return fmt.Errorf("releases.special_majors: %w: %q", err, product)
		}
	}
	return nil
}

// ClassifierContext builds the classifier context for one product.
func (c *Config) ClassifierContext(p model.Product) classify.Context {
	return classify.Context{
		Product:         p,
		CurrentESRMajor: c.Releases.CurrentESRMajor,
		NextESRMajor:    c.Releases.NextESRMajor,
		SpecialMajors:   c.Releases.SpecialMajors[string(p)],
	}
}

// ClassifierContexts builds the per-product context map the filter engine
// consumes.
func (c *Config) ClassifierContexts() map[model.Product]classify.Context {
	contexts := make(map[model.Product]classify.Context, len(model.Products))
	for _, p := range model.Products {
		contexts[p] = c.ClassifierContext(p)
	}
	return contexts
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Releases
	if other.Releases.CurrentESRMajor != "" {
		c.Releases.CurrentESRMajor = other.Releases.CurrentESRMajor
	}
	if other.Releases.NextESRMajor != "" {
		c.Releases.NextESRMajor = other.Releases.NextESRMajor
	}
	if other.Releases.AuroraVersion != "" {
		c.Releases.AuroraVersion = other.Releases.AuroraVersion
	}
	if len(other.Releases.AuroraLocales) > 0 {
		c.Releases.AuroraLocales = other.Releases.AuroraLocales
	}
	if other.Releases.OlderMajorVersion != "" {
		c.Releases.OlderMajorVersion = other.Releases.OlderMajorVersion
	}
	if len(other.Releases.SpecialMajors) > 0 {
		c.Releases.SpecialMajors = other.Releases.SpecialMajors
	}
	if other.Releases.L10nExportVersion != "" {
		c.Releases.L10nExportVersion = other.Releases.L10nExportVersion
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.EventSubject != "" {
		c.NATS.EventSubject = other.NATS.EventSubject
	}

	// HTTP
	if other.HTTP.Addr != "" {
		c.HTTP.Addr = other.HTTP.Addr
	}
	if other.HTTP.RegionsDir != "" {
		c.HTTP.RegionsDir = other.HTTP.RegionsDir
	}

	// Store
	if other.Store.SnapshotPath != "" {
		c.Store.SnapshotPath = other.Store.SnapshotPath
	}
}
