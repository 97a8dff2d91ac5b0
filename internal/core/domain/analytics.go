package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// AnalyticsSnapshot holds aggregate counters derived server-side.
// The client caches and renders it; it never recomputes it.
type AnalyticsSnapshot struct {
	TotalEmails          int      `json:"totalEmails"`
	UrgentEmails         int      `json:"urgentEmails"`
	ResolvedEmails       int      `json:"resolvedEmails"`
	PendingEmails        int      `json:"pendingEmails"`
	AvgResponseTime      *float64 `json:"avgResponseTime,omitempty"` // minutes
	ResolutionRate       *float64 `json:"resolutionRate,omitempty"`  // percent
	CustomerSatisfaction *float64 `json:"customerSatisfaction,omitempty"`
}

// Missing is rendered for metrics the server did not report.
const Missing = "—"

// AvgResponseLabel formats the average response time in whole hours.
func (a *AnalyticsSnapshot) AvgResponseLabel() string {
	if a.AvgResponseTime == nil {
		return Missing
	}
	return fmt.Sprintf("%dh", int(*a.AvgResponseTime/60))
}

// ResolutionRateLabel formats the resolution rate as a percentage.
func (a *AnalyticsSnapshot) ResolutionRateLabel() string {
	if a.ResolutionRate == nil {
		return Missing
	}
	return fmt.Sprintf("%g%%", *a.ResolutionRate)
}

// SatisfactionLabel formats customer satisfaction out of five.
func (a *AnalyticsSnapshot) SatisfactionLabel() string {
	if a.CustomerSatisfaction == nil {
		return Missing
	}
	return fmt.Sprintf("%g/5", *a.CustomerSatisfaction)
}

// VolumePoint is the number of emails received on one day.
type VolumePoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// UnmarshalJSON accepts dates as "2006-01-02" or RFC 3339.
func (p *VolumePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := parseDate(raw.Date)
	if err != nil {
		return fmt.Errorf("volume point date %q: %w", raw.Date, err)
	}
	*p = VolumePoint{Date: date, Count: raw.Count}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// SentimentCount is the number of emails with one sentiment.
type SentimentCount struct {
	Sentiment Sentiment `json:"sentiment"`
	Count     int       `json:"count"`
}

// SentimentDistribution folds counts into positive/neutral/negative order,
// with zero for sentiments the server did not report.
func SentimentDistribution(counts []SentimentCount) []SentimentCount {
	byName := make(map[Sentiment]int, len(counts))
	for _, c := range counts {
		byName[c.Sentiment] = c.Count
	}
	out := make([]SentimentCount, 0, 3)
	for _, s := range AllSentiments() {
		out = append(out, SentimentCount{Sentiment: s, Count: byName[s]})
	}
	return out
}

// TimeRange is the window of the volume chart, in days.
type TimeRange int

const (
	RangeDay   TimeRange = 1
	RangeWeek  TimeRange = 7
	RangeMonth TimeRange = 30
)

// AllTimeRanges returns the selectable ranges in display order.
func AllTimeRanges() []TimeRange {
	return []TimeRange{RangeDay, RangeWeek, RangeMonth}
}

// IsValid returns true if the range is selectable.
func (r TimeRange) IsValid() bool {
	return r == RangeDay || r == RangeWeek || r == RangeMonth
}

// Label returns the display label for the range.
func (r TimeRange) Label() string {
	switch r {
	case RangeDay:
		return "Last 24 hours"
	case RangeMonth:
		return "Last 30 days"
	default:
		return fmt.Sprintf("Last %d days", int(r))
	}
}

// Next cycles to the following selectable range.
func (r TimeRange) Next() TimeRange {
	ranges := AllTimeRanges()
	for i, candidate := range ranges {
		if candidate == r {
			return ranges[(i+1)%len(ranges)]
		}
	}
	return RangeWeek
}

// AnalyticsReport bundles the snapshot and both series for export.
type AnalyticsReport struct {
	Days      TimeRange         `json:"days"`
	Snapshot  AnalyticsSnapshot `json:"snapshot"`
	Volume    []VolumePoint     `json:"volume"`
	Sentiment []SentimentCount  `json:"sentiment"`
}
