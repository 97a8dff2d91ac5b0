package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// Ensure InboxService implements the interface.
var _ driving.InboxService = (*InboxService)(nil)

// InboxService answers one-shot requests from the CLI and MCP server.
// Reads wait for the query cache to settle; writes go through the
// mutation pipeline so later reads in the same session see fresh data.
type InboxService struct {
	cache    *QueryCache
	pipeline *MutationPipeline
}

// NewInboxService creates a new inbox service.
func NewInboxService(cache *QueryCache, pipeline *MutationPipeline) *InboxService {
	return &InboxService{cache: cache, pipeline: pipeline}
}

// ListEmails returns the email collection narrowed by filter.
func (s *InboxService) ListEmails(ctx context.Context, filter domain.Filter) ([]domain.Email, error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	emails, err := awaitData[[]domain.Email](ctx, s.cache, domain.EmailsKey())
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	return filter.Apply(emails), nil
}

// GetEmail returns an email and its responses, newest first.
func (s *InboxService) GetEmail(ctx context.Context, id string) (*driving.EmailDetail, error) {
	emails, err := awaitData[[]domain.Email](ctx, s.cache, domain.EmailsKey())
	if err != nil {
		return nil, fmt.Errorf("get email: %w", err)
	}
	for i := range emails {
		if emails[i].ID != id {
			continue
		}
		responses, err := s.responses(ctx, id)
		if err != nil {
			return nil, err
		}
		return &driving.EmailDetail{Email: emails[i], Responses: responses}, nil
	}
	return nil, fmt.Errorf("email %q: %w", id, domain.ErrNotFound)
}

// Analytics returns the snapshot and both series for days.
func (s *InboxService) Analytics(ctx context.Context, days domain.TimeRange) (*domain.AnalyticsReport, error) {
	if !days.IsValid() {
		return nil, fmt.Errorf("%w: time range %d", domain.ErrInvalidInput, days)
	}

	// Start all three fetches before waiting on any of them.
	keys := []domain.CacheKey{domain.AnalyticsKey(), domain.VolumeKey(days), domain.SentimentKey()}
	for _, key := range keys {
		s.cache.Read(key)
	}

	snapshot, err := awaitData[domain.AnalyticsSnapshot](ctx, s.cache, keys[0])
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	volume, err := awaitData[[]domain.VolumePoint](ctx, s.cache, keys[1])
	if err != nil {
		return nil, fmt.Errorf("analytics volume: %w", err)
	}
	sentiment, err := awaitData[[]domain.SentimentCount](ctx, s.cache, keys[2])
	if err != nil {
		return nil, fmt.Errorf("analytics sentiment: %w", err)
	}

	return &domain.AnalyticsReport{
		Days:      days,
		Snapshot:  snapshot,
		Volume:    volume,
		Sentiment: sentiment,
	}, nil
}

// GenerateResponse drafts a new response for emailID.
func (s *InboxService) GenerateResponse(ctx context.Context, emailID string) (*domain.Response, error) {
	return s.pipeline.GenerateResponse(ctx, emailID)
}

// UpdateResponse replaces the content of the current response of emailID.
func (s *InboxService) UpdateResponse(ctx context.Context, emailID, content string) (*domain.Response, error) {
	if _, err := domain.ValidateResponseContent(content); err != nil {
		return nil, fmt.Errorf("response content is empty: %w", err)
	}
	current, err := s.current(ctx, emailID)
	if err != nil {
		return nil, err
	}
	return s.pipeline.UpdateResponse(ctx, emailID, current.ID, content)
}

// SendResponse sends the current response of emailID.
func (s *InboxService) SendResponse(ctx context.Context, emailID string) (*domain.Response, error) {
	current, err := s.current(ctx, emailID)
	if err != nil {
		return nil, err
	}
	if current.IsSent {
		return nil, fmt.Errorf("response %s: %w", current.ID, domain.ErrAlreadySent)
	}
	return s.pipeline.SendResponse(ctx, emailID, current.ID)
}

// Refresh invalidates the email list and all analytics.
func (s *InboxService) Refresh() {
	refreshAll(s.cache)
}

func (s *InboxService) responses(ctx context.Context, emailID string) ([]domain.Response, error) {
	responses, err := awaitData[[]domain.Response](ctx, s.cache, domain.ResponsesKey(emailID))
	if err != nil {
		return nil, fmt.Errorf("responses for %s: %w", emailID, err)
	}
	return responses, nil
}

func (s *InboxService) current(ctx context.Context, emailID string) (domain.Response, error) {
	responses, err := s.responses(ctx, emailID)
	if err != nil {
		return domain.Response{}, err
	}
	current, ok := domain.LatestResponse(responses)
	if !ok {
		return domain.Response{}, fmt.Errorf("email %s: %w", emailID, domain.ErrNoResponse)
	}
	return current, nil
}

// awaitData waits for key to settle and returns its payload as T.
func awaitData[T any](ctx context.Context, cache *QueryCache, key domain.CacheKey) (T, error) {
	var zero T
	entry, err := cache.Await(ctx, key)
	if err != nil {
		return zero, err
	}
	data, ok := domain.DataAs[T](entry)
	if !ok {
		return zero, fmt.Errorf("%s holds %T", key, entry.Data)
	}
	return data, nil
}

// refreshAll invalidates the email list and every analytics resource.
func refreshAll(cache *QueryCache) {
	cache.InvalidateMatching(domain.EmailsKey())
	cache.InvalidateMatching(domain.AnalyticsKey())
	cache.InvalidateMatching(domain.NewKey(domain.ResourceAnalyticsVolume))
	cache.InvalidateMatching(domain.SentimentKey())
}
