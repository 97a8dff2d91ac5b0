package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
)

func replying(body string) *MockResourceClient {
	return &MockResourceClient{DoFunc: func(context.Context, driven.ResourceRequest) ([]byte, error) {
		return []byte(body), nil
	}}
}

func TestFetchEmails(t *testing.T) {
	t.Run("decodes collection", func(t *testing.T) {
		client := replying(`[{"id":"a","priority":"urgent","extractedInfo":null}]`)

		data, err := fetchEmails(context.Background(), client, domain.EmailsKey())

		require.NoError(t, err)
		emails := data.([]domain.Email)
		require.Len(t, emails, 1)
		assert.Equal(t, domain.PriorityUrgent, emails[0].Priority)
		assert.Equal(t, http.MethodGet, client.Requests[0].Method)
		assert.Equal(t, "emails", client.Requests[0].Path)
	})

	t.Run("null is an empty collection", func(t *testing.T) {
		data, err := fetchEmails(context.Background(), replying(`null`), domain.EmailsKey())

		require.NoError(t, err)
		assert.NotNil(t, data)
		assert.Empty(t, data)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := fetchEmails(context.Background(), replying(`{`), domain.EmailsKey())

		assert.ErrorContains(t, err, "decode emails")
	})
}

func TestFetchResponses_SortsNewestFirst(t *testing.T) {
	client := replying(`[
		{"id":"r1","emailId":"a","createdAt":"2024-05-01T09:00:00Z"},
		{"id":"r3","emailId":"a","createdAt":"2024-05-01T11:00:00Z"},
		{"id":"r2","emailId":"a","createdAt":"2024-05-01T10:00:00Z"}
	]`)

	data, err := fetchResponses(context.Background(), client, domain.ResponsesKey("a/b"))

	require.NoError(t, err)
	responses := data.([]domain.Response)
	require.Len(t, responses, 3)
	assert.Equal(t, []string{"r3", "r2", "r1"}, []string{responses[0].ID, responses[1].ID, responses[2].ID})
	assert.Equal(t, "emails/a%2Fb/responses", client.Requests[0].Path)
}

func TestFetchResponses_RequiresEmailID(t *testing.T) {
	client := replying(`[]`)

	_, err := fetchResponses(context.Background(), client, domain.NewKey(domain.ResourceResponses))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, client.calls())
}

func TestFetchVolume(t *testing.T) {
	client := replying(`[{"date":"2024-05-01","count":4},{"date":"2024-05-02T00:00:00Z","count":1}]`)

	data, err := fetchVolume(context.Background(), client, domain.VolumeKey(domain.RangeMonth))

	require.NoError(t, err)
	points := data.([]domain.VolumePoint)
	require.Len(t, points, 2)
	assert.Equal(t, 4, points[0].Count)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), points[1].Date.UTC())
	assert.Equal(t, "analytics/volume", client.Requests[0].Path)
	assert.Equal(t, "30", client.Requests[0].Query.Get("days"))

	_, err = fetchVolume(context.Background(), client, domain.NewKey(domain.ResourceAnalyticsVolume, "5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFetchSentiment_FillsMissing(t *testing.T) {
	client := replying(`[{"sentiment":"negative","count":2}]`)

	data, err := fetchSentiment(context.Background(), client, domain.SentimentKey())

	require.NoError(t, err)
	counts := data.([]domain.SentimentCount)
	require.Len(t, counts, 3)
	total := 0
	for _, c := range counts {
		total += c.Count
		if c.Sentiment == domain.SentimentNegative {
			assert.Equal(t, 2, c.Count)
		}
	}
	assert.Equal(t, 2, total)
}

func TestFetchAnalytics(t *testing.T) {
	client := replying(`{"totalEmails":10,"urgentEmails":2}`)

	data, err := fetchAnalytics(context.Background(), client, domain.AnalyticsKey())

	require.NoError(t, err)
	snap := data.(domain.AnalyticsSnapshot)
	assert.Equal(t, 10, snap.TotalEmails)
	assert.Equal(t, 2, snap.UrgentEmails)
}

func TestDefaultFetchers_CoverEveryResource(t *testing.T) {
	fetchers := DefaultFetchers()

	for _, name := range []string{
		domain.ResourceEmails,
		domain.ResourceResponses,
		domain.ResourceAnalytics,
		domain.ResourceAnalyticsVolume,
		domain.ResourceAnalyticsSentiment,
	} {
		assert.Contains(t, fetchers, name)
	}
}
