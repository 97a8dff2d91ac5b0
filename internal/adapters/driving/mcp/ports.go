package mcp

import (
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Inbox reads emails and analytics and runs response actions.
	Inbox driving.InboxService

	// Settings supplies the default analytics range. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Inbox == nil {
		return ErrMissingInboxService
	}
	return nil
}
