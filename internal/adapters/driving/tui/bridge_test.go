package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskpilot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

func TestBridge_CoalescesChanges(t *testing.T) {
	b := NewBridge()

	b.Changed()
	b.Changed()
	b.Changed()

	assert.Equal(t, messages.DashboardChanged{}, b.Wait()())

	// Nothing else is pending.
	done := make(chan any, 1)
	go func() { done <- b.Wait()() }()
	select {
	case msg := <-done:
		t.Fatalf("unexpected message %#v", msg)
	case <-time.After(20 * time.Millisecond):
	}
	b.Close()
	assert.Nil(t, <-done)
}

func TestBridge_NoticesFirst(t *testing.T) {
	b := NewBridge()
	defer b.Close()

	b.Changed()
	b.Notify(domain.Notice{ID: "n1", Title: "Response Sent"})
	b.Notify(domain.Notice{ID: "n2", Title: "Error", Level: domain.NoticeError})

	first, ok := b.Wait()().(messages.NoticeShown)
	require.True(t, ok)
	assert.Equal(t, "n1", first.Notice.ID)

	second, ok := b.Wait()().(messages.NoticeShown)
	require.True(t, ok)
	assert.Equal(t, "n2", second.Notice.ID)

	assert.Equal(t, messages.DashboardChanged{}, b.Wait()())
}

func TestBridge_NotifyNeverBlocks(t *testing.T) {
	b := NewBridge()
	defer b.Close()

	for i := 0; i < noticeBuffer+5; i++ {
		b.Notify(domain.Notice{Title: "x"})
	}

	assert.Len(t, b.notices, noticeBuffer)
}

func TestBridge_CloseIsIdempotent(t *testing.T) {
	b := NewBridge()

	b.Close()
	b.Close()

	assert.Nil(t, b.Wait()())
}
