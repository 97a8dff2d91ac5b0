package tui

import "errors"

// ErrMissingDashboardService is returned when the dashboard service is not provided.
var ErrMissingDashboardService = errors.New("tui: dashboard service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
