package driving

import "github.com/custodia-labs/deskpilot/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings. Missing or invalid stored values
	// fall back to defaults.
	Get() (*domain.Settings, error)

	// Save validates and persists settings.
	Save(settings *domain.Settings) error

	// Set parses value for a known key and persists it.
	// Returns domain.ErrInvalidInput for unknown keys or bad values.
	Set(key, value string) error

	// List returns every known setting with its current and default
	// value, in display order.
	List() ([]Setting, error)

	// Path returns where settings are stored.
	Path() string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}

// Setting is one configuration key rendered for display.
type Setting struct {
	Key         string
	Value       string
	Default     string
	Description string
}
