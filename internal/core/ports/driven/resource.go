package driven

import (
	"context"
	"net/url"
)

// ResourceRequest addresses one logical resource of the remote API.
type ResourceRequest struct {
	// Method is the HTTP method. Empty means GET.
	Method string

	// Path is relative to the API root, e.g. "emails/a/responses".
	Path string

	// Query holds optional query parameters, e.g. days=7.
	Query url.Values

	// Body is JSON-encoded when non-nil.
	Body any
}

// ResourceClient issues requests against the remote support API.
// It performs no caching and no retries.
//
// Contract for the "emails/{id}/responses" resource: the collaborator
// returns responses newest first, so the head of the list is the current
// response. Callers still re-sort by creation time before relying on it.
type ResourceClient interface {
	// Do performs the request and returns the raw JSON body of a 2xx reply.
	// Any other status, transport error or timeout yields a
	// *domain.RequestError and no data.
	Do(ctx context.Context, req ResourceRequest) ([]byte, error)
}
