package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail_DecodeWithoutExtractedInfo(t *testing.T) {
	for _, payload := range []string{
		`{"id":"a","priority":"urgent"}`,
		`{"id":"a","priority":"urgent","extractedInfo":null}`,
	} {
		var e Email
		require.NoError(t, json.Unmarshal([]byte(payload), &e))

		assert.False(t, e.ExtractedInfo.Present)
		assert.Equal(t, DefaultCategory, e.IssueSummary())
	}
}

func TestEmail_DecodeWithExtractedInfo(t *testing.T) {
	payload := `{"id":"a","category":"Billing","extractedInfo":{"issueType":["refund","invoice"],"priorityKeywords":["asap"]}}`

	var e Email
	require.NoError(t, json.Unmarshal([]byte(payload), &e))

	assert.True(t, e.ExtractedInfo.Present)
	assert.Equal(t, []string{"asap"}, e.ExtractedInfo.PriorityKeywords)
	assert.Equal(t, "refund, invoice", e.IssueSummary())
	assert.Empty(t, e.ExtractedInfo.ContactDetails)
}

func TestEmail_IssueSummaryFallsBackToCategory(t *testing.T) {
	e := Email{Category: "Account Access", ExtractedInfo: Extracted(ExtractedInfo{})}

	assert.Equal(t, "Account Access", e.IssueSummary())
}

func TestExtraction_MarshalAbsent(t *testing.T) {
	data, err := json.Marshal(Email{ID: "a"})

	require.NoError(t, err)
	assert.Contains(t, string(data), `"extractedInfo":null`)
}

func TestEmail_ShortIDAndPreview(t *testing.T) {
	e := Email{ID: "0123456789abcdef", Body: "Hello\nworld   again"}

	assert.Equal(t, "89abcdef", e.ShortID())
	assert.Equal(t, "Hello world again", e.Preview(120))
	assert.Equal(t, "Hello...", e.Preview(5))
	assert.Equal(t, "ab", (&Email{ID: "ab"}).ShortID())
}

func TestEmailStatus_Label(t *testing.T) {
	assert.Equal(t, "Response Sent", EmailStatusResponded.Label())
	assert.Equal(t, "Resolved", EmailStatusResolved.Label())
	assert.Equal(t, "Processing", EmailStatusProcessing.Label())
	assert.Equal(t, "AI Ready", EmailStatusNew.Label())
	assert.Equal(t, "AI Ready", EmailStatus("").Label())
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "Just now", TimeAgo(now.Add(-10*time.Minute), now))
	assert.Equal(t, "3 hours ago", TimeAgo(now.Add(-3*time.Hour), now))
	assert.Equal(t, "1 day ago", TimeAgo(now.Add(-30*time.Hour), now))
	assert.Equal(t, "4 days ago", TimeAgo(now.Add(-100*time.Hour), now))
}
