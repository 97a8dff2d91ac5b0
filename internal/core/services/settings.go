package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyAPIBaseURL    = "api.base_url"
	KeyAPITimeout    = "api.timeout_seconds"
	KeyAPIRateLimit  = "api.rate_limit"
	KeyAPIBurst      = "api.burst"
	KeyTimeRangeDays = "dashboard.time_range_days"
	KeyCacheGC       = "cache.gc_seconds"
)

// settingKeys lists every key in display order.
var settingKeys = []struct {
	key         string
	description string
}{
	{KeyAPIBaseURL, "root URL of the support API"},
	{KeyAPITimeout, "per-request timeout in seconds"},
	{KeyAPIRateLimit, "sustained requests per second"},
	{KeyAPIBurst, "requests allowed back to back"},
	{KeyTimeRangeDays, "initial volume chart range (1, 7 or 30)"},
	{KeyCacheGC, "seconds an unobserved cache entry is kept (0 evicts at once)"},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Each value that is missing or fails
// validation falls back to its default independently.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()
	settings := defaults

	if v := s.configStore.GetString(KeyAPIBaseURL); v != "" {
		candidate := defaults.API
		candidate.BaseURL = v
		if candidate.Validate() == nil {
			settings.API.BaseURL = v
		}
	}
	if v := s.configStore.GetInt(KeyAPITimeout); v > 0 {
		settings.API.Timeout = time.Duration(v) * time.Second
	}
	if v := s.configStore.GetFloat(KeyAPIRateLimit); v > 0 {
		settings.API.RateLimit = v
	}
	if v := s.configStore.GetInt(KeyAPIBurst); v > 0 {
		settings.API.Burst = v
	}
	if v := domain.TimeRange(s.configStore.GetInt(KeyTimeRangeDays)); v.IsValid() {
		settings.Dashboard.TimeRange = v
	}
	if _, ok := s.configStore.Get(KeyCacheGC); ok {
		if v := s.configStore.GetInt(KeyCacheGC); v >= 0 {
			settings.Cache.GCDelay = time.Duration(v) * time.Second
		}
	}

	return &settings, nil
}

// Save validates and persists settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{KeyAPIBaseURL, settings.API.BaseURL},
		{KeyAPITimeout, int(settings.API.Timeout / time.Second)},
		{KeyAPIRateLimit, settings.API.RateLimit},
		{KeyAPIBurst, settings.API.Burst},
		{KeyTimeRangeDays, int(settings.Dashboard.TimeRange)},
		{KeyCacheGC, int(settings.Cache.GCDelay / time.Second)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value for key and persists the resulting settings.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch key {
	case KeyAPIBaseURL:
		settings.API.BaseURL = value
	case KeyAPITimeout:
		n, err := parsePositiveInt(key, value)
		if err != nil {
			return err
		}
		settings.API.Timeout = time.Duration(n) * time.Second
	case KeyAPIRateLimit:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		settings.API.RateLimit = f
	case KeyAPIBurst:
		n, err := parsePositiveInt(key, value)
		if err != nil {
			return err
		}
		settings.API.Burst = n
	case KeyTimeRangeDays:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be 1, 7 or 30", domain.ErrInvalidInput, key)
		}
		settings.Dashboard.TimeRange = domain.TimeRange(n)
	case KeyCacheGC:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be zero or more", domain.ErrInvalidInput, key)
		}
		settings.Cache.GCDelay = time.Duration(n) * time.Second
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	return s.Save(settings)
}

// List returns every known setting with its current and default value.
func (s *SettingsService) List() ([]driving.Setting, error) {
	current, err := s.Get()
	if err != nil {
		return nil, err
	}
	cur := settingValues(*current)
	def := settingValues(domain.DefaultSettings())

	out := make([]driving.Setting, 0, len(settingKeys))
	for _, k := range settingKeys {
		out = append(out, driving.Setting{
			Key:         k.key,
			Value:       cur[k.key],
			Default:     def[k.key],
			Description: k.description,
		})
	}
	return out, nil
}

// Path returns where settings are stored.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func settingValues(s domain.Settings) map[string]string {
	return map[string]string{
		KeyAPIBaseURL:    s.API.BaseURL,
		KeyAPITimeout:    strconv.Itoa(int(s.API.Timeout / time.Second)),
		KeyAPIRateLimit:  strconv.FormatFloat(s.API.RateLimit, 'g', -1, 64),
		KeyAPIBurst:      strconv.Itoa(s.API.Burst),
		KeyTimeRangeDays: strconv.Itoa(int(s.Dashboard.TimeRange)),
		KeyCacheGC:       strconv.Itoa(int(s.Cache.GCDelay / time.Second)),
	}
}

func parsePositiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
	}
	return n, nil
}
