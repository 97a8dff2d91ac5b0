// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

// EmailList displays emails in a navigable list. The highlighted email
// is tracked by id so a refreshed collection keeps the cursor in place.
type EmailList struct {
	emails   []domain.Email
	selected int
	styles   *styles.Styles
	now      func() time.Time
	width    int
	height   int
}

// NewEmailList creates a new email list component.
func NewEmailList(s *styles.Styles) *EmailList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &EmailList{
		styles: s,
		now:    time.Now,
		width:  80,
		height: 10,
	}
}

// Init initialises the email list.
func (l *EmailList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *EmailList) Update(msg tea.Msg) (*EmailList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the email list.
func (l *EmailList) View() string {
	if len(l.emails) == 0 {
		return l.styles.Muted.Render("No emails match the current filters")
	}

	// Each email takes two lines.
	visible := max((l.height-1)/2, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.emails))

	lines := make([]string, 0, (end-start)*2)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderEmail(i, &l.emails[i]))
	}
	return strings.Join(lines, "\n")
}

// renderEmail formats one email as a heading line and a preview line.
func (l *EmailList) renderEmail(index int, e *domain.Email) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	age := domain.TimeAgo(e.SentDate, l.now())
	maxSubject := max(l.width-len(age)-40, 10)
	subject := truncate(e.Subject, maxSubject)
	sender := truncate(e.Sender, 24)

	heading := fmt.Sprintf("%s%-24s  %-*s", indicator, sender, maxSubject, subject)
	if index == l.selected {
		heading = l.styles.Selected.Render(heading)
	} else {
		heading = l.styles.Normal.Render(heading)
	}
	heading += "  " + l.styles.Priority(e.Priority) + "  " + l.styles.Muted.Render(age)

	preview := fmt.Sprintf("    %s  %s  %s",
		l.styles.Status(e.Status),
		l.styles.Sentiment(e.Sentiment),
		l.styles.Muted.Render(e.Preview(max(l.width-40, 20))),
	)
	return heading + "\n" + preview
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetEmails replaces the list contents, keeping the highlighted email
// when it is still present.
func (l *EmailList) SetEmails(emails []domain.Email) {
	current := l.SelectedEmail()
	l.emails = emails
	l.selected = 0
	if current == nil {
		return
	}
	for i := range emails {
		if emails[i].ID == current.ID {
			l.selected = i
			return
		}
	}
}

// Emails returns the listed emails.
func (l *EmailList) Emails() []domain.Email {
	return l.emails
}

// Selected returns the index of the highlighted email.
func (l *EmailList) Selected() int {
	return l.selected
}

// SelectedEmail returns the highlighted email, or nil if none.
func (l *EmailList) SelectedEmail() *domain.Email {
	if l.selected < 0 || l.selected >= len(l.emails) {
		return nil
	}
	e := l.emails[l.selected]
	return &e
}

// MoveUp moves selection up.
func (l *EmailList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *EmailList) MoveDown() {
	if l.selected < len(l.emails)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *EmailList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of emails.
func (l *EmailList) Count() int {
	return len(l.emails)
}
