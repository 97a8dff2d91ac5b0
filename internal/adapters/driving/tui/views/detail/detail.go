// Package detail provides the selected email and response view for the TUI.
package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// View shows the selected email with its current response and runs the
// generate, edit and send flows.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	dashboard driving.DashboardService
	ctx       context.Context

	editor  textarea.Model
	spinner spinner.Model
	editing bool
	saving  bool
	// spinning is true while a spinner tick is scheduled.
	spinning bool

	width  int
	height int
}

// NewView creates a new detail view.
func NewView(s *styles.Styles, km *keymap.KeyMap, dashboard driving.DashboardService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	editor := textarea.New()
	editor.Placeholder = "Response content"
	editor.ShowLineNumbers = false
	editor.CharLimit = 0

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Subtitle

	return &View{
		styles:    s,
		keymap:    km,
		dashboard: dashboard,
		ctx:       context.Background(),
		editor:    editor,
		spinner:   sp,
		width:     80,
		height:    24,
	}
}

// WithContext sets the context response actions run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Reset leaves edit mode. Called when a different email is opened.
func (v *View) Reset() {
	v.editing = false
	v.saving = false
	v.editor.Blur()
	v.editor.Reset()
}

// Init starts the spinner if an action is already running.
func (v *View) Init() tea.Cmd {
	return v.spin()
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DashboardChanged:
		return v, v.spin()

	case spinner.TickMsg:
		if !v.busy() {
			v.spinning = false
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ActionCompleted:
		if msg.Action == messages.ActionSave {
			v.saving = false
			if msg.Err == nil {
				v.editing = false
				v.editor.Blur()
			}
		}
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditorKey(msg)
		}
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	id := v.dashboard.Selected()
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewInbox} }

	case keymap.Matches(k, v.keymap.Generate):
		if id == "" {
			return v, nil
		}
		return v, tea.Batch(v.action(id, messages.ActionGenerate, func(ctx context.Context) error {
			return v.dashboard.Generate(ctx, id)
		}), v.startSpinner())

	case keymap.Matches(k, v.keymap.Send):
		if id == "" {
			return v, nil
		}
		return v, tea.Batch(v.action(id, messages.ActionSend, func(ctx context.Context) error {
			return v.dashboard.Send(ctx, id)
		}), v.startSpinner())

	case keymap.Matches(k, v.keymap.Edit):
		detail, ok := v.dashboard.Detail()
		if !ok {
			return v, nil
		}
		current, ok := detail.Current()
		if !ok || current.IsSent || detail.Flow.IsTransient() {
			return v, nil
		}
		v.editing = true
		v.editor.SetValue(current.Content)
		return v, v.editor.Focus()
	}

	return v, nil
}

func (v *View) handleEditorKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Back):
		v.editing = false
		v.saving = false
		v.editor.Blur()
		return v, nil

	case keymap.Matches(k, v.keymap.Save):
		id := v.dashboard.Selected()
		if v.saving || id == "" {
			return v, nil
		}
		v.saving = true
		content := v.editor.Value()
		return v, v.action(id, messages.ActionSave, func(ctx context.Context) error {
			return v.dashboard.SaveResponse(ctx, id, content)
		})
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

// action runs fn off the event loop. The dashboard reports the outcome
// through notices; the message only settles local edit state.
func (v *View) action(id, name string, fn func(context.Context) error) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		return messages.ActionCompleted{EmailID: id, Action: name, Err: fn(ctx)}
	}
}

func (v *View) busy() bool {
	id := v.dashboard.Selected()
	return v.saving || (id != "" && v.dashboard.Flow(id).IsTransient())
}

func (v *View) spin() tea.Cmd {
	if !v.busy() {
		return nil
	}
	return v.startSpinner()
}

func (v *View) startSpinner() tea.Cmd {
	if v.spinning {
		return nil
	}
	v.spinning = true
	return v.spinner.Tick
}

// Editing reports whether the response editor has focus.
func (v *View) Editing() bool {
	return v.editing
}

// Bindings returns the hints shown in the status bar.
func (v *View) Bindings() []key.Binding {
	if v.editing {
		return v.keymap.EditHelp()
	}
	return v.keymap.DetailHelp()
}

// View renders the detail view.
func (v *View) View() string {
	detail, ok := v.dashboard.Detail()
	if !ok {
		return v.styles.Muted.Render("No email selected")
	}

	sections := []string{v.renderEmail(&detail.Email), "", v.styles.Subtitle.Render("AI Response")}
	sections = append(sections, v.renderResponse(detail))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderEmail(e *domain.Email) string {
	body := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(e.Body)
	meta := fmt.Sprintf("%s  %s  %s  %s",
		v.styles.Priority(e.Priority),
		v.styles.Sentiment(e.Sentiment),
		v.styles.Status(e.Status),
		v.styles.Muted.Render(e.CategoryOrDefault()),
	)

	lines := []string{
		v.styles.Title.Render(e.Subject),
		v.styles.Normal.Render("From: "+e.Sender) + "  " +
			v.styles.Muted.Render(e.SentDate.Local().Format("Jan 2, 2006 15:04")+"  #"+e.ShortID()),
		meta,
		"",
		body,
	}
	if info := e.ExtractedInfo; info.Present {
		if len(info.ContactDetails) > 0 {
			lines = append(lines, v.styles.Muted.Render("Contact: "+strings.Join(info.ContactDetails, ", ")))
		}
		lines = append(lines, v.styles.Muted.Render("Issue: "+e.IssueSummary()))
		if len(info.SentimentKeywords) > 0 {
			lines = append(lines, v.styles.Muted.Render("Keywords: "+strings.Join(info.SentimentKeywords, ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderResponse(d *driving.DetailView) string {
	if d.Status == domain.StatusError && len(d.Responses) == 0 {
		return v.styles.Error.Render("Failed to load responses: " + d.Err.Error())
	}
	if d.Status == domain.StatusLoading && len(d.Responses) == 0 && !d.Flow.IsTransient() {
		return v.styles.Muted.Render("Loading responses...")
	}

	switch d.Flow {
	case domain.FlowGenerating:
		return v.spinner.View() + " " + v.styles.Normal.Render("Generating response...")
	case domain.FlowNone:
		return v.styles.Muted.Render("No response yet. Press g to generate one.")
	case domain.FlowUnsent, domain.FlowSending, domain.FlowSent:
	}

	current, ok := d.Current()
	if !ok {
		return ""
	}
	if v.editing {
		footer := v.styles.Muted.Render("ctrl+s save | esc cancel")
		if v.saving {
			footer = v.spinner.View() + " " + v.styles.Normal.Render("Saving...")
		}
		return v.editor.View() + "\n" + footer
	}

	content := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(current.Content)
	var info []string
	if current.Tone != "" {
		info = append(info, "Tone: "+current.Tone)
	}
	if current.QualityScore != nil {
		info = append(info, fmt.Sprintf("Quality: %d%%", *current.QualityScore))
	}
	lines := []string{v.styles.Border.Width(max(v.width-2, 22)).Render(content)}
	if len(info) > 0 {
		lines = append(lines, v.styles.Muted.Render(strings.Join(info, "  ")))
	}

	switch d.Flow {
	case domain.FlowSending:
		lines = append(lines, v.spinner.View()+" "+v.styles.Normal.Render("Sending..."))
	case domain.FlowSent:
		lines = append(lines, v.styles.Success.Render("✓ Response sent"))
	default:
		lines = append(lines, v.styles.Warning.Render("Draft")+v.styles.Muted.Render(" - e to edit, s to send"))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.editor.SetWidth(max(width-4, 20))
	v.editor.SetHeight(max(height/3, 4))
}
