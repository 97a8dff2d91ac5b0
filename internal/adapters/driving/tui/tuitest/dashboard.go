// Package tuitest provides an in-memory dashboard for exercising the TUI
// without a cache or a remote API.
package tuitest

import (
	"context"
	"sync"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// Dashboard implements driving.DashboardService over fixed state. Tests
// set the exported fields and inspect the recorded calls.
type Dashboard struct {
	mu sync.Mutex

	Mounted    bool
	OnChange   func()
	FilterVal  domain.Filter
	Range      domain.TimeRange
	SelectedID string

	EmailsEntry    domain.CacheEntry
	AnalyticsEntry domain.CacheEntry
	VolumeEntry    domain.CacheEntry
	SentimentEntry domain.CacheEntry

	// Details maps email ids to their detail view.
	Details map[string]*driving.DetailView
	Flows   map[string]domain.ResponseFlow

	VolumeChartVal    driving.Chart
	SentimentChartVal driving.Chart

	// ActionErr is returned by Generate, SaveResponse and Send.
	ActionErr error

	Generated []string
	Saved     map[string]string
	Sent      []string
	Refreshes int
}

var _ driving.DashboardService = (*Dashboard)(nil)

// NewDashboard creates a dashboard with default filter and range.
func NewDashboard() *Dashboard {
	return &Dashboard{
		FilterVal: domain.DefaultFilter(),
		Range:     domain.RangeWeek,
		Details:   make(map[string]*driving.DetailView),
		Flows:     make(map[string]domain.ResponseFlow),
		Saved:     make(map[string]string),
	}
}

// WithEmails sets a settled email list.
func (d *Dashboard) WithEmails(emails ...domain.Email) *Dashboard {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.EmailsEntry = domain.CacheEntry{
		Key: domain.EmailsKey(), Data: emails, Status: domain.StatusSuccess, Generation: 1, Version: 2,
	}
	return d
}

func (d *Dashboard) Mount(onChange func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Mounted = true
	d.OnChange = onChange
}

func (d *Dashboard) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Mounted = false
	d.OnChange = nil
}

func (d *Dashboard) Filter() domain.Filter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.FilterVal
}

func (d *Dashboard) SetFilter(f domain.Filter) error {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.FilterVal = f
	return nil
}

func (d *Dashboard) ApplyPreset(p domain.Preset) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f := domain.PresetFilter(p)
	f.Query = d.FilterVal.Query
	d.FilterVal = f
}

func (d *Dashboard) Emails() domain.CacheEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.EmailsEntry
}

func (d *Dashboard) FilteredEmails() []domain.Email {
	d.mu.Lock()
	defer d.mu.Unlock()
	emails, _ := domain.DataAs[[]domain.Email](d.EmailsEntry)
	return d.FilterVal.Apply(emails)
}

func (d *Dashboard) Select(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.SelectedID = id
}

func (d *Dashboard) Selected() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.SelectedID
}

func (d *Dashboard) Detail() (*driving.DetailView, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	view, ok := d.Details[d.SelectedID]
	if !ok {
		return nil, false
	}
	cp := *view
	if flow, ok := d.Flows[d.SelectedID]; ok {
		cp.Flow = flow
	}
	return &cp, true
}

func (d *Dashboard) Flow(emailID string) domain.ResponseFlow {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Flows[emailID]
}

func (d *Dashboard) Pending(emailID, action string) bool {
	return d.Flow(emailID).IsTransient()
}

func (d *Dashboard) Generate(_ context.Context, emailID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Generated = append(d.Generated, emailID)
	return d.ActionErr
}

func (d *Dashboard) SaveResponse(_ context.Context, emailID, content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ActionErr != nil {
		return d.ActionErr
	}
	d.Saved[emailID] = content
	return nil
}

func (d *Dashboard) Send(_ context.Context, emailID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Sent = append(d.Sent, emailID)
	return d.ActionErr
}

func (d *Dashboard) RefreshAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Refreshes++
}

func (d *Dashboard) Analytics() domain.CacheEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.AnalyticsEntry
}

func (d *Dashboard) Volume() domain.CacheEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.VolumeEntry
}

func (d *Dashboard) Sentiment() domain.CacheEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.SentimentEntry
}

func (d *Dashboard) TimeRange() domain.TimeRange {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Range
}

func (d *Dashboard) SetTimeRange(r domain.TimeRange) error {
	if !r.IsValid() {
		return domain.ErrInvalidInput
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Range = r
	return nil
}

func (d *Dashboard) VolumeChart() driving.Chart {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.VolumeChartVal
}

func (d *Dashboard) SentimentChart() driving.Chart {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.SentimentChartVal
}

// Chart is a fixed driving.Chart.
type Chart struct {
	ChartKey   domain.CacheKey
	ChartState driving.ChartState
	Rendered   string
}

var _ driving.Chart = (*Chart)(nil)

func (c *Chart) Key() domain.CacheKey { return c.ChartKey }

func (c *Chart) State() driving.ChartState { return c.ChartState }

func (c *Chart) View(width, height int) string {
	if !c.ChartState.Live || width <= 0 || height <= 0 {
		return ""
	}
	return c.Rendered
}
