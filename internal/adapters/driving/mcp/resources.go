package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for deskpilot resources.
	uriScheme = "deskpilot://"

	analyticsURI = uriScheme + "analytics"
	emailsPrefix = uriScheme + "emails/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         analyticsURI,
		Name:        "analytics",
		Description: "Inbox counters, response metrics and chart series for the default time range",
		MIMEType:    "application/json",
	}, s.handleAnalyticsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: emailsPrefix + "{emailId}",
		Name:        "email",
		Description: "A support email with its drafted responses",
		MIMEType:    "application/json",
	}, s.handleEmailResource)
}

// handleAnalyticsResource returns the analytics report as JSON.
func (s *Server) handleAnalyticsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	report, err := s.ports.Inbox.Analytics(ctx, s.defaultRange())
	if err != nil {
		return nil, fmt.Errorf("reading analytics: %w", err)
	}
	return jsonResource(req.Params.URI, analyticsOutput(report))
}

// handleEmailResource returns one email and its responses.
func (s *Server) handleEmailResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractEmailID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	_, output, err := s.handleGetEmail(ctx, nil, EmailIDInput{ID: id})
	if domain.IsNotFound(err) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading email: %w", err)
	}
	return jsonResource(req.Params.URI, output)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractEmailID extracts the id from deskpilot://emails/{emailId}.
func extractEmailID(uri string) string {
	if !strings.HasPrefix(uri, emailsPrefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, emailsPrefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
