package driven

// RenderHandle is one live visualization. It holds surface resources
// until Destroy is called.
type RenderHandle interface {
	// View draws the visualization into a width x height cell box.
	View(width, height int) string

	// Destroy releases the surface. It must be safe to call once on a
	// handle whose construction failed partway.
	Destroy() error
}

// RenderSpec constructs render handles from cached data.
type RenderSpec interface {
	// Name identifies the visualization in logs.
	Name() string

	// Build creates a handle for data. On error it may return a partially
	// constructed handle, which the caller destroys.
	Build(data any) (RenderHandle, error)
}
