// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewInbox is the filtered email list.
	ViewInbox ViewType = iota
	// ViewDetail shows the selected email and its response.
	ViewDetail
	// ViewAnalytics shows counters and both charts.
	ViewAnalytics
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewInbox:
		return "inbox"
	case ViewDetail:
		return "detail"
	case ViewAnalytics:
		return "analytics"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// DashboardChanged signals that cached dashboard state changed and the
// active view should re-read it.
type DashboardChanged struct{}

// NoticeShown carries a transient notification for the status bar.
type NoticeShown struct {
	Notice domain.Notice
}

// NoticeExpired clears the notice with the given id if it is still shown.
type NoticeExpired struct {
	ID string
}

// EmailSelected is sent when an email is opened from the list.
type EmailSelected struct {
	ID string
}

// ActionCompleted reports the outcome of a response action.
type ActionCompleted struct {
	EmailID string
	Action  string
	Err     error
}

// Response actions reported by ActionCompleted.
const (
	ActionGenerate = "generate"
	ActionSave     = "save"
	ActionSend     = "send"
)

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
