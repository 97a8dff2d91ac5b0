package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

// previewLength is the number of body runes returned in listings.
const previewLength = 120

// ListEmailsInput is the input schema for the list_emails tool.
type ListEmailsInput struct {
	Priority  string `json:"priority,omitempty" jsonschema:"urgent, normal, low or all (default all)"`
	Sentiment string `json:"sentiment,omitempty" jsonschema:"positive, neutral, negative or all (default all)"`
	Status    string `json:"status,omitempty" jsonschema:"new, processing, responded, resolved or all (default all)"`
	Query     string `json:"query,omitempty" jsonschema:"case-insensitive text matched against sender, subject and body"`
}

// ListEmailsOutput is the output schema for the list_emails tool.
type ListEmailsOutput struct {
	Emails []EmailOutput `json:"emails"`
	Count  int           `json:"count"`
}

// EmailOutput represents a single email.
type EmailOutput struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	Preview   string `json:"preview,omitempty"`
	Body      string `json:"body,omitempty"`
	SentDate  string `json:"sent_date"`
	Priority  string `json:"priority"`
	Sentiment string `json:"sentiment"`
	Category  string `json:"category"`
	Status    string `json:"status"`
	Issue     string `json:"issue"`
}

// EmailIDInput is the input schema for tools acting on one email.
type EmailIDInput struct {
	ID string `json:"id" jsonschema:"the email id"`
}

// GetEmailOutput is the output schema for the get_email tool.
type GetEmailOutput struct {
	Email     EmailOutput      `json:"email"`
	Responses []ResponseOutput `json:"responses"`
	// Current is the newest response, absent when none was generated.
	Current *ResponseOutput `json:"current,omitempty"`
}

// ResponseOutput represents a drafted response.
type ResponseOutput struct {
	ID           string `json:"id"`
	EmailID      string `json:"email_id"`
	Content      string `json:"content"`
	Tone         string `json:"tone,omitempty"`
	Context      string `json:"context,omitempty"`
	QualityScore *int   `json:"quality_score,omitempty"`
	IsSent       bool   `json:"is_sent"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// ResponseActionInput is the input schema for generate_response and send_response.
type ResponseActionInput struct {
	EmailID string `json:"email_id" jsonschema:"the email whose current response is acted on"`
}

// UpdateResponseInput is the input schema for the update_response tool.
type UpdateResponseInput struct {
	EmailID string `json:"email_id" jsonschema:"the email whose current response is edited"`
	Content string `json:"content" jsonschema:"the new response text, must not be blank"`
}

// ResponseActionOutput is the output schema for the response tools.
type ResponseActionOutput struct {
	Response ResponseOutput `json:"response"`
	Message  string         `json:"message"`
}

// AnalyticsInput is the input schema for the get_analytics tool.
type AnalyticsInput struct {
	Days int `json:"days,omitempty" jsonschema:"volume window in days: 1, 7 or 30 (default from settings)"`
}

// AnalyticsOutput is the output schema for the get_analytics tool.
type AnalyticsOutput struct {
	Days           int               `json:"days"`
	Range          string            `json:"range"`
	TotalEmails    int               `json:"total_emails"`
	UrgentEmails   int               `json:"urgent_emails"`
	ResolvedEmails int               `json:"resolved_emails"`
	PendingEmails  int               `json:"pending_emails"`
	AvgResponse    string            `json:"avg_response"`
	ResolutionRate string            `json:"resolution_rate"`
	Satisfaction   string            `json:"satisfaction"`
	Volume         []VolumeOutput    `json:"volume"`
	Sentiment      []SentimentOutput `json:"sentiment"`
}

// VolumeOutput is the email count for one day.
type VolumeOutput struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SentimentOutput is the email count for one sentiment.
type SentimentOutput struct {
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_emails",
		Description: "List support emails, optionally filtered by priority, sentiment, status or text",
	}, s.handleListEmails)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_email",
		Description: "Get an email with its drafted responses, newest first",
	}, s.handleGetEmail)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_response",
		Description: "Draft a new AI response for an email",
	}, s.handleGenerateResponse)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_response",
		Description: "Replace the text of an email's current response",
	}, s.handleUpdateResponse)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_response",
		Description: "Send an email's current response to the customer",
	}, s.handleSendResponse)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_analytics",
		Description: "Get inbox counters, response metrics, email volume and sentiment distribution",
	}, s.handleGetAnalytics)
}

func (s *Server) handleListEmails(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListEmailsInput,
) (*mcp.CallToolResult, ListEmailsOutput, error) {
	filter := domain.Filter{
		Priority:  input.Priority,
		Sentiment: input.Sentiment,
		Status:    input.Status,
		Query:     input.Query,
	}
	emails, err := s.ports.Inbox.ListEmails(ctx, filter)
	if err != nil {
		return nil, ListEmailsOutput{}, err
	}

	output := ListEmailsOutput{
		Emails: make([]EmailOutput, len(emails)),
		Count:  len(emails),
	}
	for i := range emails {
		output.Emails[i] = emailOutput(&emails[i], false)
	}
	return nil, output, nil
}

func (s *Server) handleGetEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EmailIDInput,
) (*mcp.CallToolResult, GetEmailOutput, error) {
	detail, err := s.ports.Inbox.GetEmail(ctx, input.ID)
	if err != nil {
		return nil, GetEmailOutput{}, err
	}

	output := GetEmailOutput{
		Email:     emailOutput(&detail.Email, true),
		Responses: make([]ResponseOutput, len(detail.Responses)),
	}
	for i := range detail.Responses {
		output.Responses[i] = responseOutput(&detail.Responses[i])
	}
	if current, ok := detail.Current(); ok {
		out := responseOutput(&current)
		output.Current = &out
	}
	return nil, output, nil
}

func (s *Server) handleGenerateResponse(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResponseActionInput,
) (*mcp.CallToolResult, ResponseActionOutput, error) {
	resp, err := s.ports.Inbox.GenerateResponse(ctx, input.EmailID)
	if err != nil {
		return nil, ResponseActionOutput{}, err
	}
	return nil, ResponseActionOutput{
		Response: responseOutput(resp),
		Message:  "AI response has been generated successfully.",
	}, nil
}

func (s *Server) handleUpdateResponse(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateResponseInput,
) (*mcp.CallToolResult, ResponseActionOutput, error) {
	resp, err := s.ports.Inbox.UpdateResponse(ctx, input.EmailID, input.Content)
	if err != nil {
		return nil, ResponseActionOutput{}, err
	}
	return nil, ResponseActionOutput{
		Response: responseOutput(resp),
		Message:  "Response has been updated successfully.",
	}, nil
}

func (s *Server) handleSendResponse(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResponseActionInput,
) (*mcp.CallToolResult, ResponseActionOutput, error) {
	resp, err := s.ports.Inbox.SendResponse(ctx, input.EmailID)
	if err != nil {
		return nil, ResponseActionOutput{}, err
	}
	return nil, ResponseActionOutput{
		Response: responseOutput(resp),
		Message:  "Email response has been sent successfully.",
	}, nil
}

func (s *Server) handleGetAnalytics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyticsInput,
) (*mcp.CallToolResult, AnalyticsOutput, error) {
	days := domain.TimeRange(input.Days)
	if input.Days == 0 {
		days = s.defaultRange()
	}
	report, err := s.ports.Inbox.Analytics(ctx, days)
	if err != nil {
		return nil, AnalyticsOutput{}, err
	}
	return nil, analyticsOutput(report), nil
}

func emailOutput(e *domain.Email, withBody bool) EmailOutput {
	out := EmailOutput{
		ID:        e.ID,
		Sender:    e.Sender,
		Subject:   e.Subject,
		SentDate:  formatTime(e.SentDate),
		Priority:  string(e.Priority),
		Sentiment: string(e.Sentiment),
		Category:  e.CategoryOrDefault(),
		Status:    string(e.Status),
		Issue:     e.IssueSummary(),
	}
	if withBody {
		out.Body = e.Body
	} else {
		out.Preview = e.Preview(previewLength)
	}
	return out
}

func responseOutput(r *domain.Response) ResponseOutput {
	return ResponseOutput{
		ID:           r.ID,
		EmailID:      r.EmailID,
		Content:      r.Content,
		Tone:         r.Tone,
		Context:      r.Context,
		QualityScore: r.QualityScore,
		IsSent:       r.IsSent,
		CreatedAt:    formatTime(r.CreatedAt),
	}
}

func analyticsOutput(report *domain.AnalyticsReport) AnalyticsOutput {
	snap := report.Snapshot
	out := AnalyticsOutput{
		Days:           int(report.Days),
		Range:          report.Days.Label(),
		TotalEmails:    snap.TotalEmails,
		UrgentEmails:   snap.UrgentEmails,
		ResolvedEmails: snap.ResolvedEmails,
		PendingEmails:  snap.PendingEmails,
		AvgResponse:    snap.AvgResponseLabel(),
		ResolutionRate: snap.ResolutionRateLabel(),
		Satisfaction:   snap.SatisfactionLabel(),
		Volume:         make([]VolumeOutput, len(report.Volume)),
	}
	for i, p := range report.Volume {
		out.Volume[i] = VolumeOutput{Date: p.Date.Format(time.DateOnly), Count: p.Count}
	}
	for _, c := range domain.SentimentDistribution(report.Sentiment) {
		out.Sentiment = append(out.Sentiment, SentimentOutput{Sentiment: string(c.Sentiment), Count: c.Count})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
