// Package charts renders the dashboard visualizations as terminal text.
//
// Each chart draws onto a Surface, a named screen region that holds at
// most one live handle. Building a second handle on an occupied surface
// fails with domain.ErrSurfaceBusy, so a handle that was never destroyed
// shows up as an error instead of a silent leak.
package charts

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
)

// Surface is a screen region owned by at most one handle at a time.
type Surface struct {
	name string

	mu    sync.Mutex
	owner *handle
}

// NewSurface creates an unoccupied surface.
func NewSurface(name string) *Surface {
	return &Surface{name: name}
}

// Name returns the surface name.
func (s *Surface) Name() string {
	return s.name
}

// Occupied reports whether a live handle owns the surface.
func (s *Surface) Occupied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner != nil
}

// acquire claims the surface for a new handle.
func (s *Surface) acquire() (*handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSurfaceBusy, s.name)
	}
	h := &handle{surface: s}
	s.owner = h
	return h, nil
}

func (s *Surface) release(h *handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == h {
		s.owner = nil
	}
}

// handle is a live chart on a surface. draw is nil until construction
// completes, so a partially built handle renders nothing.
type handle struct {
	surface *Surface
	draw    func(width, height int) string

	mu        sync.Mutex
	destroyed bool
}

var _ driven.RenderHandle = (*handle)(nil)

func (h *handle) View(width, height int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed || h.draw == nil || width <= 0 || height <= 0 {
		return ""
	}
	return h.draw(width, height)
}

// Destroy releases the surface. Later calls are no-ops.
func (h *handle) Destroy() error {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return nil
	}
	h.destroyed = true
	h.mu.Unlock()

	h.surface.release(h)
	return nil
}

// build claims surface and decodes data as T. On a type mismatch the
// claimed handle is returned with the error for the caller to destroy.
func build[T any](surface *Surface, name string, data any, draw func(T, int, int) string) (driven.RenderHandle, error) {
	h, err := surface.acquire()
	if err != nil {
		return nil, fmt.Errorf("%s chart: %w", name, err)
	}
	v, ok := data.(T)
	if !ok {
		return h, fmt.Errorf("%s chart: %w: unexpected data %T", name, domain.ErrInvalidInput, data)
	}
	h.draw = func(width, height int) string {
		return draw(v, width, height)
	}
	return h, nil
}
