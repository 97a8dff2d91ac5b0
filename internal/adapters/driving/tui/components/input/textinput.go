// Package input provides the inbox search box.
package input

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/styles"
)

// Event reports what a key press did to the search.
type Event int

const (
	// EventNone means the query did not change.
	EventNone Event = iota

	// EventEdited means the query text changed while the box is open.
	EventEdited

	// EventSubmitted means enter closed the box and kept the query.
	EventSubmitted

	// EventCancelled means esc closed the box and restored the query it
	// was opened with.
	EventCancelled
)

// SearchInput edits the free-text part of the inbox filter. The query is
// applied live while typing; the box also shows how many of the cached
// emails the active filter keeps.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	// original is the query the box was opened with.
	original string

	matches int
	total   int
}

// NewSearchInput creates a closed search box.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "sender, subject or body"
	ti.CharLimit = 256
	ti.Width = 40

	return &SearchInput{
		textinput: ti,
		styles:    s,
		width:     40,
	}
}

// Init starts the cursor blink.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Open focuses the box for editing query.
func (s *SearchInput) Open(query string) tea.Cmd {
	s.original = query
	s.textinput.SetValue(query)
	s.textinput.CursorEnd()
	return s.textinput.Focus()
}

// HandleKey applies a key press to an open box.
func (s *SearchInput) HandleKey(msg tea.KeyMsg) (Event, tea.Cmd) {
	if !s.textinput.Focused() {
		return EventNone, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		s.textinput.Blur()
		s.textinput.SetValue(s.Query())
		return EventSubmitted, nil
	case tea.KeyEsc:
		s.textinput.Blur()
		s.textinput.SetValue(s.original)
		return EventCancelled, nil
	default:
	}

	before := s.textinput.Value()
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	if s.textinput.Value() == before {
		return EventNone, cmd
	}
	return EventEdited, cmd
}

// Update forwards non-key messages such as cursor blinks.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// Query returns the query text without surrounding space.
func (s *SearchInput) Query() string {
	return strings.TrimSpace(s.textinput.Value())
}

// Sync shows query while the box is closed, so presets and clears made
// elsewhere are reflected. An open box keeps what the user typed.
func (s *SearchInput) Sync(query string) {
	if !s.textinput.Focused() {
		s.textinput.SetValue(query)
	}
}

// SetMatches records how many of total cached emails the filter keeps.
func (s *SearchInput) SetMatches(matches, total int) {
	s.matches = matches
	s.total = total
}

// View renders the search line.
func (s *SearchInput) View() string {
	label := s.styles.Title.Render("Search: ")
	switch {
	case s.textinput.Focused():
		box := s.styles.InputField.Render(s.textinput.View())
		//nolint:misspell // lipgloss.Center is the correct constant from the library
		return lipgloss.JoinHorizontal(lipgloss.Center, label, box, " ", s.styles.Muted.Render(s.hint()))
	case s.Query() != "":
		return label + s.styles.Normal.Render(strconv.Quote(s.Query())) +
			"  " + s.styles.Muted.Render(s.hint()+" - esc to clear")
	default:
		return label + s.styles.Muted.Render("press / to search")
	}
}

func (s *SearchInput) hint() string {
	return fmt.Sprintf("%d of %d emails", s.matches, s.total)
}

// Blur closes the box without touching the query.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the box is open.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the search line.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	// Label, match hint and padding.
	s.textinput.Width = max(width-30, 20)
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the query.
func (s *SearchInput) Reset() {
	s.original = ""
	s.textinput.Reset()
}
