// Package settings manages persistent user settings for the srctl CLI.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultAPIServer is used when no API server is configured anywhere.
const DefaultAPIServer = "http://localhost:8000"

// Settings holds persistent user preferences
type Settings struct {
	// APIServer is the path service base URL used when --api-server is
	// not specified
	APIServer string `json:"api_server,omitempty"`

	// RegistryAddr enables the Redis route registry when set
	RegistryAddr string `json:"registry,omitempty"`

	// AuditLog overrides the default audit log path
	AuditLog string `json:"audit_log,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "srctl_settings.json"
	}
	return filepath.Join(home, ".srctl", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetAPIServer returns the configured API server (with fallback)
func (s *Settings) GetAPIServer() string {
	if s.APIServer != "" {
		return s.APIServer
	}
	return DefaultAPIServer
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
