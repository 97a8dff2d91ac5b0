package domain

import (
	"sort"
	"strings"
	"time"
)

// Response is an AI-drafted reply. It belongs to exactly one Email via
// EmailID and is only ever found by filtering that email's collection.
type Response struct {
	ID           string    `json:"id"`
	EmailID      string    `json:"emailId"`
	Content      string    `json:"content"`
	Tone         string    `json:"tone,omitempty"`
	Context      string    `json:"context,omitempty"`
	QualityScore *int      `json:"qualityScore,omitempty"`
	IsSent       bool      `json:"isSent"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SortResponses orders responses newest first. Responses without a
// creation time keep their relative position.
func SortResponses(responses []Response) {
	sort.SliceStable(responses, func(i, j int) bool {
		a, b := responses[i].CreatedAt, responses[j].CreatedAt
		if a.IsZero() || b.IsZero() {
			return false
		}
		return a.After(b)
	})
}

// LatestResponse returns the current response: the head of a
// newest-first collection.
func LatestResponse(responses []Response) (Response, bool) {
	if len(responses) == 0 {
		return Response{}, false
	}
	return responses[0], true
}

// ValidateResponseContent trims edited content and rejects empty text.
func ValidateResponseContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrValidation
	}
	return trimmed, nil
}

// ResponseFlow is the response lifecycle of a single email as the
// operator sees it. Generating and Sending are transient.
type ResponseFlow int

const (
	FlowNone ResponseFlow = iota
	FlowGenerating
	FlowUnsent
	FlowSending
	FlowSent
)

// String returns the string representation of the flow state.
func (f ResponseFlow) String() string {
	switch f {
	case FlowNone:
		return "none"
	case FlowGenerating:
		return "generating"
	case FlowUnsent:
		return "unsent"
	case FlowSending:
		return "sending"
	case FlowSent:
		return "sent"
	default:
		return "unknown"
	}
}

// IsTransient returns true while a pipeline action is running.
func (f ResponseFlow) IsTransient() bool {
	return f == FlowGenerating || f == FlowSending
}

// StableFlow derives the stable flow state from a response collection.
func StableFlow(responses []Response) ResponseFlow {
	latest, ok := LatestResponse(responses)
	if !ok {
		return FlowNone
	}
	if latest.IsSent {
		return FlowSent
	}
	return FlowUnsent
}
