package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestAnalyticsSnapshot_Labels(t *testing.T) {
	a := AnalyticsSnapshot{AvgResponseTime: ptr(138), ResolutionRate: ptr(89), CustomerSatisfaction: ptr(4.7)}

	assert.Equal(t, "2h", a.AvgResponseLabel())
	assert.Equal(t, "89%", a.ResolutionRateLabel())
	assert.Equal(t, "4.7/5", a.SatisfactionLabel())
}

func TestAnalyticsSnapshot_MissingLabels(t *testing.T) {
	var a AnalyticsSnapshot

	assert.Equal(t, Missing, a.AvgResponseLabel())
	assert.Equal(t, Missing, a.ResolutionRateLabel())
	assert.Equal(t, Missing, a.SatisfactionLabel())
}

func TestSentimentDistribution(t *testing.T) {
	got := SentimentDistribution([]SentimentCount{
		{Sentiment: SentimentNegative, Count: 4},
		{Sentiment: SentimentPositive, Count: 9},
	})

	assert.Equal(t, []SentimentCount{
		{Sentiment: SentimentPositive, Count: 9},
		{Sentiment: SentimentNeutral, Count: 0},
		{Sentiment: SentimentNegative, Count: 4},
	}, got)
}

func TestTimeRange(t *testing.T) {
	assert.Equal(t, RangeMonth, RangeWeek.Next())
	assert.Equal(t, RangeDay, RangeMonth.Next())
	assert.Equal(t, RangeWeek, TimeRange(99).Next())
	assert.Equal(t, "Last 24 hours", RangeDay.Label())
	assert.Equal(t, "Last 7 days", RangeWeek.Label())
	assert.False(t, TimeRange(3).IsValid())
}

func TestVolumePoint_UnmarshalJSON(t *testing.T) {
	var points []VolumePoint
	err := json.Unmarshal([]byte(`[{"date":"2024-03-01","count":4},{"date":"2024-03-02T00:00:00Z","count":6}]`), &points)

	assert.NoError(t, err)
	assert.Len(t, points, 2)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, 6, points[1].Count)

	err = json.Unmarshal([]byte(`{"date":"yesterday","count":1}`), &VolumePoint{})
	assert.Error(t, err)
}
