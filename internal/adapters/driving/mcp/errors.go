// Package mcp provides an MCP (Model Context Protocol) server adapter for deskpilot.
// It lets AI assistants read the support inbox and act on drafted responses.
package mcp

import "errors"

// ErrMissingInboxService is returned when the inbox service is not provided.
var ErrMissingInboxService = errors.New("mcp: inbox service is required")
