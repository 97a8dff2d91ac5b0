package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_Update(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
	assert.Nil(t, bar.Init())
}

func TestStatusBar_View_States(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*Bar)
		content string
	}{
		{"ready", func(*Bar) {}, "Ready"},
		{"loading", func(b *Bar) { b.SetState(StateLoading) }, "Loading..."},
		{"error with message", func(b *Bar) {
			b.SetState(StateError)
			b.SetMessage("network failure")
		}, "Error: network failure"},
		{"count", func(b *Bar) { b.SetCount(12) }, "12 emails"},
		{"message", func(b *Bar) { b.SetMessage("Filter: urgent") }, "Filter: urgent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			tt.setup(bar)

			assert.Contains(t, bar.View(), tt.content)
		})
	}
}

func TestStatusBar_Notice(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)
	bar.SetState(StateLoading)

	bar.SetNotice(domain.Notice{ID: "n1", Level: domain.NoticeError, Title: "Error", Message: "Generate a response first."})

	assert.Contains(t, bar.View(), "Error: Generate a response first.")
	n, ok := bar.Notice()
	require.True(t, ok)
	assert.Equal(t, "n1", n.ID)

	bar.ClearNotice("other")
	_, ok = bar.Notice()
	assert.True(t, ok)

	bar.ClearNotice("n1")
	_, ok = bar.Notice()
	assert.False(t, ok)
	assert.Contains(t, bar.View(), "Loading...")
}

func TestStatusBar_Bindings(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km)
	bar.SetWidth(160)

	assert.Contains(t, bar.View(), "q: quit")

	bar.SetBindings(km.DetailHelp())
	view := bar.View()
	assert.Contains(t, view, "g: generate")
	assert.Contains(t, view, "s: send")
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("x")
	bar.SetCount(3)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 0, bar.count)
}
