package domain

import (
	"fmt"
	"strings"
)

// All matches every value of a filter dimension.
const All = "all"

// Filter narrows the cached email collection locally. It is a pure value;
// changing it never triggers a network round-trip.
type Filter struct {
	Priority  string `json:"priority"`
	Sentiment string `json:"sentiment"`
	Status    string `json:"status"`
	// Query is a case-insensitive substring matched against sender,
	// subject and body. Empty matches everything.
	Query string `json:"query,omitempty"`
}

// DefaultFilter returns a filter that matches every email.
func DefaultFilter() Filter {
	return Filter{Priority: All, Sentiment: All, Status: All}
}

// Preset identifies a quick filter from the navigation sidebar.
type Preset string

const (
	PresetAll      Preset = "all"
	PresetUrgent   Preset = "urgent"
	PresetResolved Preset = "resolved"
)

// PresetFilter returns the filter for a sidebar preset.
func PresetFilter(p Preset) Filter {
	f := DefaultFilter()
	switch p {
	case PresetUrgent:
		f.Priority = string(PriorityUrgent)
	case PresetResolved:
		f.Status = string(EmailStatusResolved)
	case PresetAll:
	}
	return f
}

// Validate checks every dimension holds "all" or a known value.
func (f Filter) Validate() error {
	if f.Priority != All && !Priority(f.Priority).IsValid() {
		return fmt.Errorf("%w: priority %q", ErrInvalidInput, f.Priority)
	}
	if f.Sentiment != All && !Sentiment(f.Sentiment).IsValid() {
		return fmt.Errorf("%w: sentiment %q", ErrInvalidInput, f.Sentiment)
	}
	if f.Status != All && !EmailStatus(f.Status).IsValid() {
		return fmt.Errorf("%w: status %q", ErrInvalidInput, f.Status)
	}
	return nil
}

// Normalize replaces empty dimensions with All.
func (f Filter) Normalize() Filter {
	if f.Priority == "" {
		f.Priority = All
	}
	if f.Sentiment == "" {
		f.Sentiment = All
	}
	if f.Status == "" {
		f.Status = All
	}
	f.Query = strings.TrimSpace(f.Query)
	return f
}

// Matches reports whether the email passes every dimension.
func (f Filter) Matches(e *Email) bool {
	if f.Priority != All && f.Priority != "" && string(e.Priority) != f.Priority {
		return false
	}
	if f.Sentiment != All && f.Sentiment != "" && string(e.Sentiment) != f.Sentiment {
		return false
	}
	if f.Status != All && f.Status != "" && string(e.Status) != f.Status {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(e.Sender), q) &&
			!strings.Contains(strings.ToLower(e.Subject), q) &&
			!strings.Contains(strings.ToLower(e.Body), q) {
			return false
		}
	}
	return true
}

// Apply returns the order-preserving subsequence of emails that match.
// The input slice is never modified.
func (f Filter) Apply(emails []Email) []Email {
	out := make([]Email, 0, len(emails))
	for i := range emails {
		if f.Matches(&emails[i]) {
			out = append(out, emails[i])
		}
	}
	return out
}

// IsDefault returns true if the filter matches everything.
func (f Filter) IsDefault() bool {
	return f.Normalize() == DefaultFilter()
}

// cycle returns the value after current in values, wrapping through All.
func cycle(current string, values []string) string {
	options := append([]string{All}, values...)
	for i, v := range options {
		if v == current {
			return options[(i+1)%len(options)]
		}
	}
	return All
}

// NextPriority cycles the priority dimension.
func (f Filter) NextPriority() Filter {
	f.Priority = cycle(f.Priority, []string{
		string(PriorityUrgent), string(PriorityNormal), string(PriorityLow),
	})
	return f
}

// NextSentiment cycles the sentiment dimension.
func (f Filter) NextSentiment() Filter {
	f.Sentiment = cycle(f.Sentiment, []string{
		string(SentimentPositive), string(SentimentNegative), string(SentimentNeutral),
	})
	return f
}

// NextStatus cycles the status dimension.
func (f Filter) NextStatus() Filter {
	f.Status = cycle(f.Status, []string{
		string(EmailStatusNew), string(EmailStatusProcessing),
		string(EmailStatusResponded), string(EmailStatusResolved),
	})
	return f
}
