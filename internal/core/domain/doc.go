// Package domain defines the core business entities for deskpilot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Email: An incoming support message with its AI classification
//   - Response: An AI-drafted reply belonging to exactly one Email
//   - AnalyticsSnapshot: Server-side aggregate counters and time series
//   - CacheKey / CacheEntry: Addressing and state of cached resources
//   - Filter: Local narrowing of the email collection
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
