// Package tui provides the interactive terminal dashboard for deskpilot.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Dashboard provides the reactive inbox, response and analytics state.
	Dashboard driving.DashboardService

	// Settings exposes the active configuration to the help view.
	// Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(dashboard driving.DashboardService, settings driving.SettingsService) *Ports {
	return &Ports{
		Dashboard: dashboard,
		Settings:  settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Dashboard == nil {
		return ErrMissingDashboardService
	}
	return nil
}
