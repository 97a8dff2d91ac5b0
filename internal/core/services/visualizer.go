package services

import (
	"sync"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
	"github.com/custodia-labs/deskpilot/internal/logger"
)

// Visualizer binds cache keys to render handles.
type Visualizer struct {
	cache *QueryCache
}

// NewVisualizer creates a visualizer reading from cache.
func NewVisualizer(cache *QueryCache) *Visualizer {
	return &Visualizer{cache: cache}
}

// BindOption configures a Binding.
type BindOption func(*Binding)

// OnRebind registers fn to run after the binding's handle is created or
// destroyed. It runs without the binding's lock held.
func OnRebind(fn func()) BindOption {
	return func(b *Binding) {
		b.onRebind = fn
	}
}

// Bind subscribes to key and keeps one live handle built by spec for the
// entry's current generation. The binding lives until Close.
func (v *Visualizer) Bind(key domain.CacheKey, spec driven.RenderSpec, opts ...BindOption) *Binding {
	b := &Binding{key: key, spec: spec}
	for _, opt := range opts {
		opt(b)
	}

	unsubscribe := v.cache.Subscribe(key, b.apply)
	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.mu.Unlock()

	b.apply(v.cache.Read(key))
	return b
}

// Ensure Binding implements the interface.
var _ driving.Chart = (*Binding)(nil)

// Binding ties one cache key to at most one live render handle.
//
// A success snapshot with a new generation destroys the current handle
// and then builds the replacement. Any other status destroys the handle
// and builds nothing. Snapshots older than one already applied are
// ignored, so a re-notification never rebuilds.
type Binding struct {
	key      domain.CacheKey
	spec     driven.RenderSpec
	onRebind func()

	mu          sync.Mutex
	handle      driven.RenderHandle
	generation  uint64
	version     uint64
	seen        bool
	status      domain.QueryStatus
	err         error
	closed      bool
	unsubscribe func()
}

// Key returns the bound cache key.
func (b *Binding) Key() domain.CacheKey {
	return b.key
}

// State returns the binding's current state.
func (b *Binding) State() driving.ChartState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return driving.ChartState{
		Status:     b.status,
		Err:        b.err,
		Generation: b.generation,
		Live:       b.handle != nil,
	}
}

// View draws the live handle, or returns "" when there is none.
func (b *Binding) View(width, height int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handle == nil {
		return ""
	}
	return b.handle.View(width, height)
}

// Close unsubscribes and destroys the handle. It is safe to call twice.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	unsubscribe := b.unsubscribe
	changed := b.destroy()
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if changed {
		b.notify()
	}
}

func (b *Binding) apply(e domain.CacheEntry) {
	b.mu.Lock()
	if b.closed || (b.seen && e.Version <= b.version) {
		b.mu.Unlock()
		return
	}
	b.seen = true
	b.version = e.Version
	b.status = e.Status
	b.err = e.Err

	changed := false
	switch {
	case e.Status != domain.StatusSuccess:
		changed = b.destroy()
	case e.Generation != b.generation:
		b.destroy()
		b.build(e)
		changed = true
	}
	b.mu.Unlock()

	if changed {
		b.notify()
	}
}

// build requires b.mu and no live handle.
func (b *Binding) build(e domain.CacheEntry) {
	b.generation = e.Generation
	h, err := b.spec.Build(e.Data)
	if err != nil {
		if h != nil {
			if derr := h.Destroy(); derr != nil {
				logger.Warn("viz: %s: release after failed build: %v", b.spec.Name(), derr)
			}
		}
		b.err = err
		logger.Warn("viz: %s: build generation %d failed: %v", b.spec.Name(), e.Generation, err)
		return
	}
	b.handle = h
	logger.Debug("viz: %s: built generation %d", b.spec.Name(), e.Generation)
}

// destroy requires b.mu. It reports whether a handle was released.
func (b *Binding) destroy() bool {
	if b.handle == nil {
		return false
	}
	if err := b.handle.Destroy(); err != nil {
		logger.Warn("viz: %s: destroy: %v", b.spec.Name(), err)
	}
	b.handle = nil
	logger.Debug("viz: %s: destroyed generation %d", b.spec.Name(), b.generation)
	return true
}

func (b *Binding) notify() {
	if b.onRebind != nil {
		b.onRebind()
	}
}
