package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/tuitest"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testDashboard() *tuitest.Dashboard {
	d := tuitest.NewDashboard().WithEmails(
		domain.Email{ID: "e1", Sender: "ana@example.com", Subject: "Refund please", SentDate: time.Now(),
			Priority: domain.PriorityUrgent, Status: domain.EmailStatusNew},
		domain.Email{ID: "e2", Sender: "bo@example.com", Subject: "Thanks", SentDate: time.Now(),
			Priority: domain.PriorityLow, Status: domain.EmailStatusResolved},
	)
	d.Details["e1"] = &driving.DetailView{
		EmailDetail: driving.EmailDetail{Email: domain.Email{ID: "e1", Subject: "Refund please"}},
		Status:      domain.StatusSuccess,
	}
	return d
}

func newTestApp(t *testing.T) (*App, *tuitest.Dashboard) {
	t.Helper()
	d := testDashboard()
	app, err := NewApp(&Ports{Dashboard: d})
	require.NoError(t, err)
	app.SetDimensions(120, 30)
	return app, d
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(NewPorts(tuitest.NewDashboard(), nil))

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewInbox, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingDashboardService)
	assert.Nil(t, app)
}

func TestApp_WithContextAndBridge(t *testing.T) {
	app, _ := newTestApp(t)
	b := NewBridge()

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
	assert.Equal(t, app, app.WithBridge(b))
	assert.Same(t, b, app.bridge)
	assert.Equal(t, app, app.WithBridge(nil))
	assert.Same(t, b, app.bridge)
}

func TestApp_InitMountsDashboard(t *testing.T) {
	app, d := newTestApp(t)

	cmd := app.Init()

	assert.NotNil(t, cmd)
	assert.True(t, d.Mounted)
	require.NotNil(t, d.OnChange)

	// The mount callback feeds the bridge.
	d.OnChange()
	assert.Equal(t, messages.DashboardChanged{}, app.bridge.Wait()())
}

func TestApp_WindowSize(t *testing.T) {
	d := testDashboard()
	app, _ := NewApp(&Ports{Dashboard: d})

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "Refund please")
}

func TestApp_CtrlCQuits(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_QuitIgnoredWhileSearching(t *testing.T) {
	app, d := newTestApp(t)

	app.Update(runes("/"))
	app.Update(runes("q"))

	assert.Equal(t, "q", d.Filter().Query)
	assert.Equal(t, messages.ViewInbox, app.CurrentView())
}

func TestApp_OpenEmailAndBack(t *testing.T) {
	app, d := newTestApp(t)

	app.Update(messages.EmailSelected{ID: "e1"})

	assert.Equal(t, messages.ViewDetail, app.CurrentView())
	assert.Equal(t, "e1", d.Selected())
	assert.Contains(t, app.View(), "No response yet")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewInbox, app.CurrentView())
}

func TestApp_EnterOpensHighlightedEmail(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.EmailSelected{ID: "e1"}, cmd())
}

func TestApp_AnalyticsAndHelp(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(runes("a"))
	assert.Equal(t, messages.ViewAnalytics, app.CurrentView())
	assert.Contains(t, app.View(), "Analytics")

	app.Update(runes("?"))
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "generate")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewAnalytics, app.CurrentView())

	app.Update(runes("i"))
	assert.Equal(t, messages.ViewInbox, app.CurrentView())
}

func TestApp_NoticeLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	app.noticeTTL = time.Millisecond

	_, cmd := app.Update(messages.NoticeShown{Notice: domain.Notice{
		ID: "n1", Level: domain.NoticeInfo, Title: "Response Sent", Message: "Email response has been sent successfully.",
	}})

	assert.NotNil(t, cmd)
	assert.Contains(t, app.View(), "Response Sent")

	app.Update(messages.NoticeExpired{ID: "n1"})
	assert.NotContains(t, app.View(), "Response Sent")
}

func TestApp_DashboardChangedRefreshesInbox(t *testing.T) {
	app, d := newTestApp(t)
	d.WithEmails()

	_, cmd := app.Update(messages.DashboardChanged{})

	assert.NotNil(t, cmd)
	assert.Contains(t, app.View(), "No emails match the current filters")
}

func TestApp_ErrorOccurred(t *testing.T) {
	app, _ := newTestApp(t)
	err := errors.New("boom")

	app.Update(messages.ErrorOccurred{Err: err})

	assert.Equal(t, err, app.Err())
	assert.Contains(t, app.View(), "Error: boom")
}

func TestApp_QuitMessage(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
}
