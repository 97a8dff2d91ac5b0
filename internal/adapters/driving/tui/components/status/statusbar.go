// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
)

// Bar displays application state, the latest notice and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	bindings []key.Binding
	state    State
	message  string
	notice   *domain.Notice
	count    int
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft shows the notice if one is active, otherwise the state.
func (s *Bar) renderLeft() string {
	if s.notice != nil {
		text := s.notice.Title
		if s.notice.Message != "" {
			text += ": " + s.notice.Message
		}
		if s.notice.Level == domain.NoticeError {
			return s.styles.Error.Render(text)
		}
		return s.styles.Success.Render(text)
	}

	switch s.state {
	case StateLoading:
		return s.styles.Muted.Render("Loading...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateReady:
	}
	if s.message != "" {
		return s.styles.Normal.Render(s.message)
	}
	if s.count > 0 {
		return s.styles.Normal.Render(fmt.Sprintf("%d emails", s.count))
	}
	return s.styles.Muted.Render("Ready")
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	bindings := s.bindings
	if len(bindings) == 0 {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetNotice shows n until it is cleared.
func (s *Bar) SetNotice(n domain.Notice) {
	s.notice = &n
}

// Notice returns the notice being shown, if any.
func (s *Bar) Notice() (domain.Notice, bool) {
	if s.notice == nil {
		return domain.Notice{}, false
	}
	return *s.notice, true
}

// ClearNotice removes the notice if its id matches.
func (s *Bar) ClearNotice(id string) {
	if s.notice != nil && s.notice.ID == id {
		s.notice = nil
	}
}

// SetCount sets the number of emails listed.
func (s *Bar) SetCount(count int) {
	s.count = count
}

// SetBindings sets the hints shown on the right.
func (s *Bar) SetBindings(bindings []key.Binding) {
	s.bindings = bindings
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.count = 0
}
