package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority is the AI-assigned urgency of an email.
type Priority string

const (
	// PriorityUrgent needs attention first.
	PriorityUrgent Priority = "urgent"
	// PriorityNormal is the default classification.
	PriorityNormal Priority = "normal"
	// PriorityLow can wait.
	PriorityLow Priority = "low"
)

// IsValid returns true if the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityNormal, PriorityLow:
		return true
	default:
		return false
	}
}

// Label returns the display label for the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityUrgent:
		return "Urgent"
	case PriorityLow:
		return "Low"
	default:
		return "Normal"
	}
}

// Sentiment is the AI-assigned tone of an email.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// IsValid returns true if the sentiment is a known value.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}

// AllSentiments returns sentiments in display order.
func AllSentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}
}

// EmailStatus is the workflow state of an email, owned by the remote store.
type EmailStatus string

const (
	EmailStatusNew        EmailStatus = "new"
	EmailStatusProcessing EmailStatus = "processing"
	EmailStatusResponded  EmailStatus = "responded"
	EmailStatusResolved   EmailStatus = "resolved"
)

// IsValid returns true if the status is a known value.
func (s EmailStatus) IsValid() bool {
	switch s {
	case EmailStatusNew, EmailStatusProcessing, EmailStatusResponded, EmailStatusResolved:
		return true
	default:
		return false
	}
}

// Label returns the list label shown next to the status icon.
func (s EmailStatus) Label() string {
	switch s {
	case EmailStatusResponded:
		return "Response Sent"
	case EmailStatusResolved:
		return "Resolved"
	case EmailStatusProcessing:
		return "Processing"
	default:
		return "AI Ready"
	}
}

// DefaultCategory is shown when an email carries no category.
const DefaultCategory = "General Support"

// Email is an incoming support message. The client never mutates it;
// status changes happen upstream as a side effect of response actions.
type Email struct {
	ID            string      `json:"id"`
	Sender        string      `json:"sender"`
	Subject       string      `json:"subject"`
	Body          string      `json:"body"`
	SentDate      time.Time   `json:"sentDate"`
	Priority      Priority    `json:"priority"`
	Sentiment     Sentiment   `json:"sentiment"`
	Category      string      `json:"category,omitempty"`
	Status        EmailStatus `json:"status"`
	ExtractedInfo Extraction  `json:"extractedInfo"`
}

// ShortID returns the last eight characters of the id.
func (e *Email) ShortID() string {
	if len(e.ID) <= 8 {
		return e.ID
	}
	return e.ID[len(e.ID)-8:]
}

// CategoryOrDefault returns the category, or DefaultCategory when empty.
func (e *Email) CategoryOrDefault() string {
	if e.Category == "" {
		return DefaultCategory
	}
	return e.Category
}

// Preview returns at most n runes of the body on a single line.
func (e *Email) Preview(n int) string {
	body := strings.Join(strings.Fields(e.Body), " ")
	runes := []rune(body)
	if len(runes) <= n {
		return body
	}
	return string(runes[:n]) + "..."
}

// IssueSummary returns the extracted issue types, falling back to the
// category and then DefaultCategory.
func (e *Email) IssueSummary() string {
	if e.ExtractedInfo.Present && len(e.ExtractedInfo.IssueTypes) > 0 {
		return strings.Join(e.ExtractedInfo.IssueTypes, ", ")
	}
	return e.CategoryOrDefault()
}

// ExtractedInfo holds the optional structured annotations produced by
// the classifier.
type ExtractedInfo struct {
	ContactDetails    []string `json:"contactDetails,omitempty"`
	IssueTypes        []string `json:"issueType,omitempty"`
	SentimentKeywords []string `json:"sentimentKeywords,omitempty"`
	PriorityKeywords  []string `json:"priorityKeywords,omitempty"`
}

// Extraction is ExtractedInfo with explicit absence. A missing or null
// extractedInfo decodes to Present == false.
type Extraction struct {
	Present bool
	ExtractedInfo
}

// Extracted wraps info as a present Extraction.
func Extracted(info ExtractedInfo) Extraction {
	return Extraction{Present: true, ExtractedInfo: info}
}

// UnmarshalJSON implements json.Unmarshaler.
func (x *Extraction) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*x = Extraction{}
		return nil
	}
	var info ExtractedInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return fmt.Errorf("decoding extractedInfo: %w", err)
	}
	*x = Extracted(info)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (x Extraction) MarshalJSON() ([]byte, error) {
	if !x.Present {
		return []byte("null"), nil
	}
	return json.Marshal(x.ExtractedInfo)
}

// TimeAgo formats the age of t relative to now for the email list.
func TimeAgo(t, now time.Time) string {
	hours := int(now.Sub(t).Hours())
	if hours < 1 {
		return "Just now"
	}
	if hours < 24 {
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := hours / 24
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
