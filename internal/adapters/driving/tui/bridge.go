package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/logger"
)

// noticeBuffer bounds the notices queued while the program is busy.
const noticeBuffer = 16

// Bridge carries dashboard callbacks, which run on cache goroutines, into
// the Bubbletea event loop. Change signals coalesce: any number of
// changes between two reads produce one DashboardChanged message.
type Bridge struct {
	changes chan struct{}
	notices chan domain.Notice
	done    chan struct{}
	once    sync.Once
}

// NewBridge creates a bridge.
func NewBridge() *Bridge {
	return &Bridge{
		changes: make(chan struct{}, 1),
		notices: make(chan domain.Notice, noticeBuffer),
		done:    make(chan struct{}),
	}
}

// Changed records that dashboard state changed. It never blocks.
func (b *Bridge) Changed() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// Notify queues a notice for the status bar. It never blocks; notices
// beyond the buffer are dropped.
func (b *Bridge) Notify(n domain.Notice) {
	select {
	case b.notices <- n:
	default:
		logger.Warn("tui: dropping notice %q, queue full", n.Title)
	}
}

// Close stops any pending Wait.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// Wait returns a command that blocks until the next change or notice.
// Notices are delivered before coalesced changes. The model re-issues
// Wait after handling each message.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case n := <-b.notices:
			return messages.NoticeShown{Notice: n}
		default:
		}
		select {
		case n := <-b.notices:
			return messages.NoticeShown{Notice: n}
		case <-b.changes:
			return messages.DashboardChanged{}
		case <-b.done:
			return nil
		}
	}
}
