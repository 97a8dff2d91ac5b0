package driving

import (
	"context"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

// EmailDetail joins an email with its response collection, newest first.
type EmailDetail struct {
	Email     domain.Email
	Responses []domain.Response
}

// Current returns the current response, if any.
func (d *EmailDetail) Current() (domain.Response, bool) {
	return domain.LatestResponse(d.Responses)
}

// InboxService is the request/response view of the inbox used by
// non-interactive callers. Reads go through the query cache and writes
// through the mutation pipeline.
type InboxService interface {
	// ListEmails returns the cached collection narrowed by filter.
	ListEmails(ctx context.Context, filter domain.Filter) ([]domain.Email, error)

	// GetEmail returns an email and its responses.
	// Returns domain.ErrNotFound if no email has the id.
	GetEmail(ctx context.Context, id string) (*EmailDetail, error)

	// Analytics returns the snapshot plus both series for a time range.
	Analytics(ctx context.Context, days domain.TimeRange) (*domain.AnalyticsReport, error)

	// GenerateResponse drafts a new response for the email.
	GenerateResponse(ctx context.Context, emailID string) (*domain.Response, error)

	// UpdateResponse replaces the content of the email's current response.
	// Empty content fails with domain.ErrValidation before any write.
	UpdateResponse(ctx context.Context, emailID, content string) (*domain.Response, error)

	// SendResponse sends the email's current response.
	SendResponse(ctx context.Context, emailID string) (*domain.Response, error)

	// Refresh invalidates the email list and all analytics.
	Refresh()
}
