package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
	"github.com/custodia-labs/deskpilot/internal/logger"
)

// Action names.
const (
	ActionGenerate = "generate-response"
	ActionUpdate   = "update-response"
	ActionSend     = "send-response"
)

// Action is one remote write plus the cache keys it makes stale.
// Each key in Invalidates is applied as a prefix, so a bare
// analytics.volume key covers every time range.
type Action struct {
	Name        string
	Method      string
	Path        string
	Body        any
	Invalidates []domain.CacheKey
}

// GenerateAction drafts a new response for an email.
func GenerateAction(emailID string) Action {
	return Action{
		Name:   ActionGenerate,
		Method: http.MethodPost,
		Path:   "emails/" + url.PathEscape(emailID) + "/generate-response",
		Invalidates: []domain.CacheKey{
			domain.ResponsesKey(emailID),
			domain.EmailsKey(),
			domain.AnalyticsKey(),
		},
	}
}

// UpdateAction replaces the content of a response.
func UpdateAction(emailID, responseID, content string) Action {
	return Action{
		Name:   ActionUpdate,
		Method: http.MethodPatch,
		Path:   "responses/" + url.PathEscape(responseID),
		Body:   map[string]string{"content": content},
		Invalidates: []domain.CacheKey{
			domain.ResponsesKey(emailID),
		},
	}
}

// SendAction sends a response to the email's sender.
func SendAction(emailID, responseID string) Action {
	return Action{
		Name:   ActionSend,
		Method: http.MethodPost,
		Path:   "responses/" + url.PathEscape(responseID) + "/send",
		Invalidates: []domain.CacheKey{
			domain.ResponsesKey(emailID),
			domain.EmailsKey(),
			domain.AnalyticsKey(),
			domain.NewKey(domain.ResourceAnalyticsVolume),
			domain.SentimentKey(),
		},
	}
}

// MutationPipeline performs remote writes and invalidates the cache keys
// each write declares. Invalidation happens only after the write is
// acknowledged; a failed write leaves the cache untouched.
//
// Concurrent mutations are not deduplicated. Whatever order they land in,
// the invalidations that follow re-read the server's current state.
type MutationPipeline struct {
	client driven.ResourceClient
	cache  *QueryCache
}

// NewMutationPipeline creates a pipeline writing through client.
func NewMutationPipeline(client driven.ResourceClient, cache *QueryCache) *MutationPipeline {
	return &MutationPipeline{client: client, cache: cache}
}

// Mutate performs the write and, on success, invalidates the declared keys.
// It returns the raw body of the write's reply.
func (p *MutationPipeline) Mutate(ctx context.Context, a Action) ([]byte, error) {
	logger.Debug("mutation: %s %s %s", a.Name, a.Method, a.Path)

	body, err := p.client.Do(ctx, driven.ResourceRequest{
		Method: a.Method,
		Path:   a.Path,
		Body:   a.Body,
	})
	if err != nil {
		logger.Warn("mutation: %s failed: %v", a.Name, err)
		return nil, fmt.Errorf("%s: %w", a.Name, err)
	}

	for _, key := range a.Invalidates {
		logger.Debug("mutation: %s invalidates %s", a.Name, key)
		p.cache.InvalidateMatching(key)
	}
	return body, nil
}

// GenerateResponse drafts a new response for emailID.
func (p *MutationPipeline) GenerateResponse(ctx context.Context, emailID string) (*domain.Response, error) {
	body, err := p.Mutate(ctx, GenerateAction(emailID))
	if err != nil {
		return nil, err
	}
	return decodeResponse(body, domain.Response{EmailID: emailID})
}

// UpdateResponse replaces the content of responseID. Blank content is
// rejected with domain.ErrValidation before anything is written.
func (p *MutationPipeline) UpdateResponse(ctx context.Context, emailID, responseID, content string) (*domain.Response, error) {
	trimmed, err := domain.ValidateResponseContent(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ActionUpdate, err)
	}
	body, err := p.Mutate(ctx, UpdateAction(emailID, responseID, trimmed))
	if err != nil {
		return nil, err
	}
	return decodeResponse(body, domain.Response{ID: responseID, EmailID: emailID, Content: trimmed})
}

// SendResponse sends responseID.
func (p *MutationPipeline) SendResponse(ctx context.Context, emailID, responseID string) (*domain.Response, error) {
	body, err := p.Mutate(ctx, SendAction(emailID, responseID))
	if err != nil {
		return nil, err
	}
	return decodeResponse(body, domain.Response{ID: responseID, EmailID: emailID, IsSent: true})
}

// decodeResponse parses the written resource. An empty reply yields
// fallback, since the write itself already succeeded.
func decodeResponse(body []byte, fallback domain.Response) (*domain.Response, error) {
	if len(body) == 0 {
		return &fallback, nil
	}
	var r domain.Response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &r, nil
}
