package driving

import (
	"context"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

// DetailView is the joined state of the selected email.
type DetailView struct {
	EmailDetail

	// Status is the state of the responses entry.
	Status domain.QueryStatus
	Err    error
	Flow   domain.ResponseFlow
}

// ChartState describes a bound chart for display.
type ChartState struct {
	Status     domain.QueryStatus
	Err        error
	Generation uint64
	Live       bool
}

// Chart is one bound visualization.
type Chart interface {
	Key() domain.CacheKey
	State() ChartState
	View(width, height int) string
}

// DashboardService is the interactive view of the inbox. It keeps cache
// subscriptions and chart bindings alive between Mount and Unmount.
type DashboardService interface {
	// Mount starts observing every dashboard resource. onChange runs after
	// any of them changes, possibly on another goroutine.
	Mount(onChange func())
	Unmount()

	Filter() domain.Filter
	SetFilter(f domain.Filter) error
	ApplyPreset(p domain.Preset)
	Emails() domain.CacheEntry
	FilteredEmails() []domain.Email

	Select(id string)
	Selected() string
	Detail() (*DetailView, bool)
	Flow(emailID string) domain.ResponseFlow
	Pending(emailID, action string) bool

	Generate(ctx context.Context, emailID string) error
	SaveResponse(ctx context.Context, emailID, content string) error
	Send(ctx context.Context, emailID string) error
	RefreshAll()

	Analytics() domain.CacheEntry
	Volume() domain.CacheEntry
	Sentiment() domain.CacheEntry
	TimeRange() domain.TimeRange
	SetTimeRange(r domain.TimeRange) error

	// VolumeChart and SentimentChart return nil when unbound.
	VolumeChart() Chart
	SentimentChart() Chart
}
