package analytics

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/tuitest"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

func ptr(f float64) *float64 { return &f }

func settled(data any) domain.CacheEntry {
	return domain.CacheEntry{Data: data, Status: domain.StatusSuccess, Generation: 1, Version: 2}
}

func newTestView(t *testing.T) (*View, *tuitest.Dashboard) {
	t.Helper()
	d := tuitest.NewDashboard()
	d.AnalyticsEntry = settled(domain.AnalyticsSnapshot{
		TotalEmails: 42, UrgentEmails: 5, ResolvedEmails: 30, PendingEmails: 7,
		AvgResponseTime: ptr(150), ResolutionRate: ptr(71.4),
	})
	v := NewView(nil, nil, d)
	v.SetDimensions(160, 40)
	return v, d
}

func TestView_Cards(t *testing.T) {
	v, _ := newTestView(t)

	view := v.View()

	for _, want := range []string{
		"Analytics", "Total Emails", "42", "Urgent", "Resolved", "30",
		"Avg Response", "2h", "Resolution Rate", "71.4%", "Satisfaction", domain.Missing,
	} {
		assert.Contains(t, view, want)
	}
}

func TestView_CardsLoadingAndError(t *testing.T) {
	d := tuitest.NewDashboard()
	v := NewView(nil, nil, d)

	d.AnalyticsEntry = domain.CacheEntry{Status: domain.StatusLoading}
	assert.Contains(t, v.View(), "Loading analytics...")

	d.AnalyticsEntry = domain.CacheEntry{Status: domain.StatusError, Err: errors.New("HTTP 503")}
	assert.Contains(t, v.View(), "Failed to load analytics: HTTP 503")
}

func TestView_Charts(t *testing.T) {
	tests := []struct {
		name  string
		state driving.ChartState
		want  string
	}{
		{"live", driving.ChartState{Status: domain.StatusSuccess, Generation: 1, Live: true}, "<volume chart>"},
		{"loading", driving.ChartState{Status: domain.StatusLoading}, "Loading chart..."},
		{"fetch failed", driving.ChartState{Status: domain.StatusError, Err: errors.New("timeout")}, "Chart unavailable: timeout"},
		{"build failed", driving.ChartState{Status: domain.StatusSuccess, Generation: 1, Err: errors.New("surface busy")},
			"Chart failed to render: surface busy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, d := newTestView(t)
			d.VolumeChartVal = &tuitest.Chart{ChartKey: domain.VolumeKey(domain.RangeWeek), ChartState: tt.state, Rendered: "<volume chart>"}

			assert.Contains(t, v.View(), tt.want)
		})
	}
}

func TestView_UnboundCharts(t *testing.T) {
	v, d := newTestView(t)
	d.VolumeEntry = settled([]domain.VolumePoint{{Count: 3}, {Count: 4}})
	d.SentimentEntry = settled([]domain.SentimentCount{{Sentiment: domain.SentimentPositive, Count: 2}})

	view := v.View()

	assert.Contains(t, view, "7 emails over 2 days")
	assert.Contains(t, view, "positive 2")
	assert.Contains(t, view, "negative 0")
	assert.Contains(t, view, "Last 7 days")
}

func TestView_TimeRangeCycles(t *testing.T) {
	v, d := newTestView(t)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	assert.Nil(t, cmd)
	assert.Equal(t, domain.RangeMonth, d.TimeRange())
	assert.Contains(t, v.View(), "Last 30 days")

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	assert.Equal(t, domain.RangeDay, d.TimeRange())
}

func TestView_RefreshAndBack(t *testing.T) {
	v, d := newTestView(t)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Equal(t, 1, d.Refreshes)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewInbox}, cmd())
	assert.Len(t, v.Bindings(), 3)
	assert.Nil(t, v.Init())
}
