package domain

import (
	"strconv"
	"strings"
)

// Resource names used as the first component of cache keys.
const (
	ResourceEmails             = "emails"
	ResourceResponses          = "responses"
	ResourceAnalytics          = "analytics"
	ResourceAnalyticsVolume    = "analytics.volume"
	ResourceAnalyticsSentiment = "analytics.sentiment"
)

// CacheKey addresses one fetchable resource: a name plus an ordered list
// of scalar parameters. Two keys are equal iff both parts are equal.
type CacheKey struct {
	Name   string
	Params []string
}

// NewKey builds a cache key.
func NewKey(name string, params ...string) CacheKey {
	return CacheKey{Name: name, Params: params}
}

// EmailsKey addresses the full email collection.
func EmailsKey() CacheKey { return NewKey(ResourceEmails) }

// ResponsesKey addresses the response collection of one email.
func ResponsesKey(emailID string) CacheKey { return NewKey(ResourceResponses, emailID) }

// AnalyticsKey addresses the aggregate analytics snapshot.
func AnalyticsKey() CacheKey { return NewKey(ResourceAnalytics) }

// VolumeKey addresses the volume series for a time range.
func VolumeKey(days TimeRange) CacheKey {
	return NewKey(ResourceAnalyticsVolume, strconv.Itoa(int(days)))
}

// SentimentKey addresses the sentiment distribution.
func SentimentKey() CacheKey { return NewKey(ResourceAnalyticsSentiment) }

// String returns a canonical form usable as a map key.
// Parameters are quoted so ("a","b") and ("a b") never collide.
func (k CacheKey) String() string {
	var b strings.Builder
	b.WriteString(strconv.Quote(k.Name))
	for _, p := range k.Params {
		b.WriteByte(',')
		b.WriteString(strconv.Quote(p))
	}
	return b.String()
}

// Equal reports whether two keys address the same resource.
func (k CacheKey) Equal(other CacheKey) bool {
	if k.Name != other.Name || len(k.Params) != len(other.Params) {
		return false
	}
	for i := range k.Params {
		if k.Params[i] != other.Params[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether k has prefix's name and starts with its params.
func (k CacheKey) HasPrefix(prefix CacheKey) bool {
	if k.Name != prefix.Name || len(prefix.Params) > len(k.Params) {
		return false
	}
	for i := range prefix.Params {
		if k.Params[i] != prefix.Params[i] {
			return false
		}
	}
	return true
}

// Param returns the i-th parameter, or "" when absent.
func (k CacheKey) Param(i int) string {
	if i < 0 || i >= len(k.Params) {
		return ""
	}
	return k.Params[i]
}

// QueryStatus is the fetch state of a cache entry.
type QueryStatus int

const (
	StatusIdle QueryStatus = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// String returns the string representation of the status.
func (s QueryStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// CacheEntry is an immutable snapshot of one cached resource.
//
// Invariants: StatusSuccess implies Data is present and Err is nil.
// StatusError implies Err is set and Data is the last-known-good value.
// StatusLoading never clears Data.
type CacheEntry struct {
	Key    CacheKey
	Data   any
	Status QueryStatus
	Err    error
	// Generation increments each time Data is replaced by a successful fetch.
	Generation uint64
	// Version increments on every state transition of the entry.
	Version uint64
	// Stale is set when the entry was invalidated while nobody observed it.
	Stale bool
}

// HasData reports whether a successful fetch has ever populated the entry.
func (e CacheEntry) HasData() bool {
	return e.Generation > 0
}

// Settled reports whether the entry is not waiting on a fetch.
func (e CacheEntry) Settled() bool {
	return e.Status == StatusSuccess || e.Status == StatusError
}

// DataAs returns the entry payload as T.
func DataAs[T any](e CacheEntry) (T, bool) {
	v, ok := e.Data.(T)
	return v, ok
}
