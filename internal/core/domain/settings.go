package domain

import (
	"fmt"
	"net/url"
	"time"
)

// APISettings configures the Resource Client.
type APISettings struct {
	// BaseURL is the root every resource path is resolved against.
	BaseURL string

	// Timeout bounds a single request, including reading the body.
	Timeout time.Duration

	// RateLimit is the sustained number of requests per second.
	RateLimit float64

	// Burst is the maximum number of requests issued back to back.
	Burst int
}

// Validate checks the API settings are usable.
func (a APISettings) Validate() error {
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api base url %q", ErrInvalidInput, a.BaseURL)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("%w: api timeout must be positive", ErrInvalidInput)
	}
	if a.RateLimit <= 0 || a.Burst <= 0 {
		return fmt.Errorf("%w: api rate limit and burst must be positive", ErrInvalidInput)
	}
	return nil
}

// DashboardSettings configures the interactive dashboard.
type DashboardSettings struct {
	// TimeRange is the initial window of the volume chart.
	TimeRange TimeRange
}

// CacheSettings configures the query cache.
type CacheSettings struct {
	// GCDelay is how long an entry nobody observes is retained for warm
	// reuse. Zero evicts on the last unsubscribe.
	GCDelay time.Duration
}

// Settings holds all application settings.
type Settings struct {
	API       APISettings
	Dashboard DashboardSettings
	Cache     CacheSettings
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		API: APISettings{
			BaseURL:   "http://localhost:5000/api",
			Timeout:   30 * time.Second,
			RateLimit: 10,
			Burst:     20,
		},
		Dashboard: DashboardSettings{
			TimeRange: RangeWeek,
		},
		Cache: CacheSettings{
			GCDelay: 5 * time.Minute,
		},
	}
}

// Validate checks all settings.
func (s Settings) Validate() error {
	if err := s.API.Validate(); err != nil {
		return err
	}
	if !s.Dashboard.TimeRange.IsValid() {
		return fmt.Errorf("%w: time range %d", ErrInvalidInput, s.Dashboard.TimeRange)
	}
	if s.Cache.GCDelay < 0 {
		return fmt.Errorf("%w: cache gc delay must not be negative", ErrInvalidInput)
	}
	return nil
}
