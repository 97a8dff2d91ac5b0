// Package inbox provides the filtered email list view for the TUI.
package inbox

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// View is the inbox: filter summary, search box and the email list.
// Filtering is applied by the dashboard over its cached collection.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.EmailList
	dashboard driving.DashboardService

	width  int
	height int
	ready  bool
}

// NewView creates a new inbox view.
func NewView(s *styles.Styles, km *keymap.KeyMap, dashboard driving.DashboardService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		input:     input.NewSearchInput(s),
		list:      list.NewEmailList(s),
		dashboard: dashboard,
		width:     80,
		height:    24,
	}
	v.Refresh()
	return v
}

// Init loads the current list.
func (v *View) Init() tea.Cmd {
	v.Refresh()
	return nil
}

// Refresh re-reads the filtered emails from the dashboard.
func (v *View) Refresh() {
	emails := v.dashboard.FilteredEmails()
	v.list.SetEmails(emails)
	all, _ := domain.DataAs[[]domain.Email](v.dashboard.Emails())
	v.input.SetMatches(len(emails), len(all))
	v.input.Sync(v.dashboard.Filter().Query)
}

// Update handles messages for the inbox view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DashboardChanged:
		v.Refresh()
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Search mode: every key edits the query.
	if v.input.Focused() {
		event, cmd := v.input.HandleKey(msg)
		switch event {
		case input.EventEdited, input.EventCancelled:
			return v, tea.Batch(cmd, v.setQuery(v.input.Query()))
		case input.EventNone, input.EventSubmitted:
		}
		return v, cmd
	}

	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Search):
		return v, v.input.Open(v.dashboard.Filter().Query)
	case keymap.Matches(k, v.keymap.Select):
		e := v.list.SelectedEmail()
		if e == nil {
			return v, nil
		}
		id := e.ID
		return v, func() tea.Msg { return messages.EmailSelected{ID: id} }
	case keymap.Matches(k, v.keymap.Refresh):
		v.dashboard.RefreshAll()
		return v, nil
	case keymap.Matches(k, v.keymap.FilterPriority):
		return v, v.setFilter(v.dashboard.Filter().NextPriority())
	case keymap.Matches(k, v.keymap.FilterSentiment):
		return v, v.setFilter(v.dashboard.Filter().NextSentiment())
	case keymap.Matches(k, v.keymap.FilterStatus):
		return v, v.setFilter(v.dashboard.Filter().NextStatus())
	case keymap.Matches(k, v.keymap.PresetAll):
		return v, v.applyPreset(domain.PresetAll)
	case keymap.Matches(k, v.keymap.PresetUrgent):
		return v, v.applyPreset(domain.PresetUrgent)
	case keymap.Matches(k, v.keymap.PresetResolved):
		return v, v.applyPreset(domain.PresetResolved)
	case keymap.Matches(k, v.keymap.Back):
		if v.dashboard.Filter().Query != "" {
			v.input.Reset()
			return v, v.setQuery("")
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *View) setFilter(f domain.Filter) tea.Cmd {
	if err := v.dashboard.SetFilter(f); err != nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
	}
	v.Refresh()
	return nil
}

func (v *View) setQuery(q string) tea.Cmd {
	f := v.dashboard.Filter()
	f.Query = q
	return v.setFilter(f)
}

func (v *View) applyPreset(p domain.Preset) tea.Cmd {
	v.dashboard.ApplyPreset(p)
	v.Refresh()
	return nil
}

// Capturing reports whether the view consumes every key press.
func (v *View) Capturing() bool {
	return v.input.Focused()
}

// Bindings returns the hints shown in the status bar.
func (v *View) Bindings() []key.Binding {
	if v.input.Focused() {
		return []key.Binding{v.keymap.Back}
	}
	return v.keymap.InboxHelp()
}

// Count returns the number of listed emails.
func (v *View) Count() int {
	return v.list.Count()
}

// View renders the inbox view.
func (v *View) View() string {
	sections := make([]string, 0, 8)
	sections = append(sections,
		v.styles.Title.Render("Inbox"),
		v.renderFilter(),
		v.input.View(),
		"",
	)

	entry := v.dashboard.Emails()
	switch {
	case entry.Status == domain.StatusError && !entry.HasData():
		sections = append(sections, v.styles.Error.Render("Failed to load emails: "+entry.Err.Error()))
	case !entry.HasData():
		sections = append(sections, v.styles.Muted.Render("Loading emails..."))
	default:
		if entry.Status == domain.StatusError {
			sections = append(sections, v.styles.Warning.Render("Showing cached emails: "+entry.Err.Error()))
		}
		sections = append(sections, v.list.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderFilter summarises the active filter.
func (v *View) renderFilter() string {
	f := v.dashboard.Filter()
	summary := fmt.Sprintf("Priority: %s  Sentiment: %s  Status: %s", f.Priority, f.Sentiment, f.Status)
	if f.IsDefault() {
		return v.styles.Muted.Render(summary)
	}
	return v.styles.Subtitle.Render(summary)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	// Title, filter, search box and spacing take six lines.
	v.list.SetDimensions(width, max(height-6, 2))
}
