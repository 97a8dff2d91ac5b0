package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
)

// Fetcher loads the data addressed by a cache key.
type Fetcher func(ctx context.Context, client driven.ResourceClient, key domain.CacheKey) (any, error)

// DefaultFetchers returns the fetchers for every resource the dashboard reads.
//
// Payload types stored in the cache:
//
//	emails              []domain.Email
//	responses           []domain.Response (newest first)
//	analytics           domain.AnalyticsSnapshot
//	analytics.volume    []domain.VolumePoint
//	analytics.sentiment []domain.SentimentCount (positive, neutral, negative)
func DefaultFetchers() map[string]Fetcher {
	return map[string]Fetcher{
		domain.ResourceEmails:             fetchEmails,
		domain.ResourceResponses:          fetchResponses,
		domain.ResourceAnalytics:          fetchAnalytics,
		domain.ResourceAnalyticsVolume:    fetchVolume,
		domain.ResourceAnalyticsSentiment: fetchSentiment,
	}
}

func fetchEmails(ctx context.Context, client driven.ResourceClient, _ domain.CacheKey) (any, error) {
	emails, err := getJSON[[]domain.Email](ctx, client, driven.ResourceRequest{Path: "emails"})
	if err != nil {
		return nil, err
	}
	if emails == nil {
		emails = []domain.Email{}
	}
	return emails, nil
}

func fetchResponses(ctx context.Context, client driven.ResourceClient, key domain.CacheKey) (any, error) {
	emailID := key.Param(0)
	if emailID == "" {
		return nil, fmt.Errorf("%w: responses key needs an email id", domain.ErrInvalidInput)
	}
	responses, err := getJSON[[]domain.Response](ctx, client, driven.ResourceRequest{
		Path: "emails/" + url.PathEscape(emailID) + "/responses",
	})
	if err != nil {
		return nil, err
	}
	if responses == nil {
		responses = []domain.Response{}
	}
	domain.SortResponses(responses)
	return responses, nil
}

func fetchAnalytics(ctx context.Context, client driven.ResourceClient, _ domain.CacheKey) (any, error) {
	return getJSON[domain.AnalyticsSnapshot](ctx, client, driven.ResourceRequest{Path: "analytics"})
}

func fetchVolume(ctx context.Context, client driven.ResourceClient, key domain.CacheKey) (any, error) {
	days, err := strconv.Atoi(key.Param(0))
	if err != nil || !domain.TimeRange(days).IsValid() {
		return nil, fmt.Errorf("%w: volume range %q", domain.ErrInvalidInput, key.Param(0))
	}
	points, err := getJSON[[]domain.VolumePoint](ctx, client, driven.ResourceRequest{
		Path:  "analytics/volume",
		Query: url.Values{"days": {strconv.Itoa(days)}},
	})
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []domain.VolumePoint{}
	}
	return points, nil
}

func fetchSentiment(ctx context.Context, client driven.ResourceClient, _ domain.CacheKey) (any, error) {
	counts, err := getJSON[[]domain.SentimentCount](ctx, client, driven.ResourceRequest{Path: "analytics/sentiment"})
	if err != nil {
		return nil, err
	}
	return domain.SentimentDistribution(counts), nil
}

// getJSON performs a read and decodes the body into T.
func getJSON[T any](ctx context.Context, client driven.ResourceClient, req driven.ResourceRequest) (T, error) {
	var out T
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	body, err := client.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", req.Path, err)
	}
	return out, nil
}
