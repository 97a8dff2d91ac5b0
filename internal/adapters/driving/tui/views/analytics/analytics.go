// Package analytics provides the counters and charts view for the TUI.
package analytics

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// View shows the analytics snapshot and the volume and sentiment charts.
// Charts are drawn by their bindings; the view only lays them out.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	dashboard driving.DashboardService

	width  int
	height int
}

// NewView creates a new analytics view.
func NewView(s *styles.Styles, km *keymap.KeyMap, dashboard driving.DashboardService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keymap:    km,
		dashboard: dashboard,
		width:     80,
		height:    24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the analytics view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		k := msg.String()
		switch {
		case keymap.Matches(k, v.keymap.TimeRange):
			next := v.dashboard.TimeRange().Next()
			if err := v.dashboard.SetTimeRange(next); err != nil {
				return v, func() tea.Msg { return messages.ErrorOccurred{Err: err} }
			}
			return v, nil
		case keymap.Matches(k, v.keymap.Refresh):
			v.dashboard.RefreshAll()
			return v, nil
		case keymap.Matches(k, v.keymap.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewInbox} }
		}
	}
	return v, nil
}

// Bindings returns the hints shown in the status bar.
func (v *View) Bindings() []key.Binding {
	return v.keymap.AnalyticsHelp()
}

// View renders the analytics view.
func (v *View) View() string {
	chartWidth := max(v.width-4, 20)
	// Cards take five lines, headings and spacing another six.
	chartHeight := max((v.height-11)/2, 3)

	sections := []string{
		v.styles.Title.Render("Analytics"),
		v.renderCards(),
		v.styles.Subtitle.Render("Email Volume") + v.styles.Muted.Render("  "+v.dashboard.TimeRange().Label()),
		v.renderChart(v.dashboard.VolumeChart(), v.dashboard.Volume(), chartWidth, chartHeight),
		"",
		v.styles.Subtitle.Render("Sentiment"),
		v.renderChart(v.dashboard.SentimentChart(), v.dashboard.Sentiment(), chartWidth, 3),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderCards() string {
	entry := v.dashboard.Analytics()
	snapshot, ok := domain.DataAs[domain.AnalyticsSnapshot](entry)
	switch {
	case entry.Status == domain.StatusError && !ok:
		return v.styles.Error.Render("Failed to load analytics: " + entry.Err.Error())
	case !ok:
		return v.styles.Muted.Render("Loading analytics...")
	}

	cards := []string{
		v.card("Total Emails", fmt.Sprint(snapshot.TotalEmails)),
		v.card("Urgent", fmt.Sprint(snapshot.UrgentEmails)),
		v.card("Resolved", fmt.Sprint(snapshot.ResolvedEmails)),
		v.card("Pending", fmt.Sprint(snapshot.PendingEmails)),
		v.card("Avg Response", snapshot.AvgResponseLabel()),
		v.card("Resolution Rate", snapshot.ResolutionRateLabel()),
		v.card("Satisfaction", snapshot.SatisfactionLabel()),
	}

	// Wrap cards onto as many rows as the width needs.
	perRow := max(v.width/lipgloss.Width(cards[0]), 1)
	rows := make([]string, 0, len(cards)/perRow+1)
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *View) card(label, value string) string {
	return v.styles.Card.Render(v.styles.Muted.Render(label) + "\n" + v.styles.Title.Render(value))
}

// renderChart draws a bound chart, falling back to its state when no
// handle is live.
func (v *View) renderChart(chart driving.Chart, entry domain.CacheEntry, width, height int) string {
	if chart == nil {
		return v.renderUnbound(entry)
	}
	state := chart.State()
	switch {
	case state.Live:
		return chart.View(width, height)
	case state.Status == domain.StatusError && state.Err != nil:
		return v.styles.Error.Render("Chart unavailable: " + state.Err.Error())
	case state.Err != nil:
		return v.styles.Error.Render("Chart failed to render: " + state.Err.Error())
	default:
		return v.styles.Muted.Render("Loading chart...")
	}
}

// renderUnbound summarises a series that has no chart attached.
func (v *View) renderUnbound(entry domain.CacheEntry) string {
	switch {
	case entry.Status == domain.StatusError:
		return v.styles.Error.Render("Failed to load: " + entry.Err.Error())
	case !entry.HasData():
		return v.styles.Muted.Render("Loading...")
	}
	switch data := entry.Data.(type) {
	case []domain.VolumePoint:
		total := 0
		for _, p := range data {
			total += p.Count
		}
		return v.styles.Normal.Render(fmt.Sprintf("%d emails over %d days", total, len(data)))
	case []domain.SentimentCount:
		out := ""
		for _, sc := range domain.SentimentDistribution(data) {
			out += fmt.Sprintf("%s %d  ", sc.Sentiment, sc.Count)
		}
		return v.styles.Normal.Render(out)
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}
