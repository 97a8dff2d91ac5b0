package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/views/analytics"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/views/detail"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/views/inbox"
)

// DefaultNoticeTTL is how long a notice stays in the status bar.
const DefaultNoticeTTL = 4 * time.Second

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// bridge carries dashboard callbacks into the event loop.
	bridge *Bridge

	styles *styles.Styles
	keymap *keymap.KeyMap

	inboxView     *inbox.View
	detailView    *detail.View
	analyticsView *analytics.View
	statusbar     *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when help is closed.
	previousView messages.ViewType

	noticeTTL time.Duration

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		bridge:        NewBridge(),
		styles:        s,
		keymap:        km,
		inboxView:     inbox.NewView(s, km, ports.Dashboard),
		detailView:    detail.NewView(s, km, ports.Dashboard),
		analyticsView: analytics.NewView(s, km, ports.Dashboard),
		statusbar:     status.NewBar(s, km),
		currentView:   messages.ViewInbox,
		noticeTTL:     DefaultNoticeTTL,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.detailView.WithContext(ctx)
	return a
}

// WithBridge sets the bridge the dashboard reports through. The same
// bridge must receive the dashboard's notices.
func (a *App) WithBridge(b *Bridge) *App {
	if b != nil {
		a.bridge = b
	}
	return a
}

// Init implements tea.Model.
// It mounts the dashboard and starts listening for its changes.
func (a *App) Init() tea.Cmd {
	a.ports.Dashboard.Mount(a.bridge.Changed)
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("deskpilot - Support Inbox"),
		a.bridge.Wait(),
		a.inboxView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.capturing() {
			k := msg.String()
			switch {
			case keymap.Matches(k, a.keymap.Quit):
				return a, tea.Quit
			case keymap.Matches(k, a.keymap.Help):
				if a.currentView == messages.ViewHelp {
					a.currentView = a.previousView
				} else {
					a.previousView = a.currentView
					a.currentView = messages.ViewHelp
				}
				return a, nil
			case keymap.Matches(k, a.keymap.Analytics) && a.currentView != messages.ViewAnalytics:
				a.currentView = messages.ViewAnalytics
				return a, nil
			case keymap.Matches(k, a.keymap.Inbox):
				a.currentView = messages.ViewInbox
				a.inboxView.Refresh()
				return a, nil
			}
		}

		switch a.currentView {
		case messages.ViewInbox:
			a.inboxView, cmd = a.inboxView.Update(msg)
		case messages.ViewDetail:
			a.detailView, cmd = a.detailView.Update(msg)
		case messages.ViewAnalytics:
			a.analyticsView, cmd = a.analyticsView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc {
				a.currentView = a.previousView
			}
		}
		return a, cmd

	case messages.DashboardChanged:
		a.inboxView, _ = a.inboxView.Update(msg)
		a.detailView, cmd = a.detailView.Update(msg)
		return a, tea.Batch(cmd, a.bridge.Wait())

	case messages.NoticeShown:
		a.statusbar.SetNotice(msg.Notice)
		id := msg.Notice.ID
		expire := tea.Tick(a.noticeTTL, func(time.Time) tea.Msg {
			return messages.NoticeExpired{ID: id}
		})
		return a, tea.Batch(a.bridge.Wait(), expire)

	case messages.NoticeExpired:
		a.statusbar.ClearNotice(msg.ID)
		return a, nil

	case messages.EmailSelected:
		if a.ports.Dashboard.Selected() != msg.ID {
			a.detailView.Reset()
		}
		a.ports.Dashboard.Select(msg.ID)
		a.currentView = messages.ViewDetail
		return a, a.detailView.Init()

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewInbox {
			a.inboxView.Refresh()
		}
		return a, nil

	case messages.ActionCompleted, spinner.TickMsg:
		a.detailView, cmd = a.detailView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

// capturing reports whether the active view consumes every key press.
func (a *App) capturing() bool {
	switch a.currentView {
	case messages.ViewInbox:
		return a.inboxView.Capturing()
	case messages.ViewDetail:
		return a.detailView.Editing()
	default:
		return false
	}
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewDetail:
		a.statusbar.SetBindings(a.detailView.Bindings())
		body = a.detailView.View()
	case messages.ViewAnalytics:
		a.statusbar.SetBindings(a.analyticsView.Bindings())
		body = a.analyticsView.View()
	case messages.ViewHelp:
		a.statusbar.SetBindings(nil)
		body = a.viewHelp()
	default:
		a.statusbar.SetBindings(a.inboxView.Bindings())
		a.statusbar.SetCount(a.inboxView.Count())
		body = a.inboxView.View()
	}

	// Keep the status bar on the last line.
	pad := a.height - lipgloss.Height(body) - 1
	if pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return body + "\n" + a.statusbar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	lines := []string{a.styles.Title.Render("Help"), ""}
	for _, group := range a.keymap.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("  %-10s %s", h.Key, h.Desc))
		}
		lines = append(lines, "")
	}

	if a.ports.Settings != nil {
		if settings, err := a.ports.Settings.Get(); err == nil {
			lines = append(lines,
				a.styles.Muted.Render("API: "+settings.API.BaseURL),
				a.styles.Muted.Render("Config: "+a.ports.Settings.Path()),
				"",
			)
		}
	}
	lines = append(lines, a.styles.Muted.Render("[?] or [esc] to close"))
	return strings.Join(lines, "\n")
}

// Run starts the TUI application and unmounts the dashboard on exit.
func (a *App) Run() error {
	defer a.bridge.Close()
	defer a.ports.Dashboard.Unmount()

	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions. One line is kept for the
// status bar.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.inboxView.SetDimensions(width, height-1)
	a.detailView.SetDimensions(width, height-1)
	a.analyticsView.SetDimensions(width, height-1)
	a.statusbar.SetWidth(width)
}
