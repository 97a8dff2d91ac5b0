package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
)

const waitTimeout = 2 * time.Second

// pendingCall is one request held by controlledClient until the test replies.
type pendingCall struct {
	req   driven.ResourceRequest
	reply chan fakeReply
}

type fakeReply struct {
	body []byte
	err  error
}

func (c *pendingCall) respond(body string) {
	c.reply <- fakeReply{body: []byte(body)}
}

func (c *pendingCall) fail(err error) {
	c.reply <- fakeReply{err: err}
}

// controlledClient blocks every request until the test answers it, so
// tests decide the order responses arrive in.
type controlledClient struct {
	mu    sync.Mutex
	count int
	calls chan *pendingCall
}

func newControlledClient() *controlledClient {
	return &controlledClient{calls: make(chan *pendingCall, 32)}
}

func (f *controlledClient) Do(ctx context.Context, req driven.ResourceRequest) ([]byte, error) {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()

	call := &pendingCall{req: req, reply: make(chan fakeReply, 1)}
	f.calls <- call
	select {
	case r := <-call.reply:
		return r.body, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *controlledClient) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func (f *controlledClient) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a request")
		return nil
	}
}

func (f *controlledClient) expectNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected request %s %s", c.req.Method, c.req.Path)
	case <-time.After(50 * time.Millisecond):
	}
}

// MockResourceClient answers synchronously through DoFunc.
type MockResourceClient struct {
	DoFunc func(ctx context.Context, req driven.ResourceRequest) ([]byte, error)

	mu       sync.Mutex
	Requests []driven.ResourceRequest
}

func (m *MockResourceClient) Do(ctx context.Context, req driven.ResourceRequest) ([]byte, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.DoFunc != nil {
		return m.DoFunc(ctx, req)
	}
	return []byte("[]"), nil
}

func (m *MockResourceClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// recorder collects notifications delivered to a listener.
type recorder struct {
	ch chan domain.CacheEntry
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan domain.CacheEntry, 64)}
}

func (r *recorder) listen(e domain.CacheEntry) {
	r.ch <- e
}

func (r *recorder) next(t *testing.T) domain.CacheEntry {
	t.Helper()
	select {
	case e := <-r.ch:
		return e
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a notification")
		return domain.CacheEntry{}
	}
}

// waitFor returns the first notification with status, failing on timeout.
func (r *recorder) waitFor(t *testing.T, status domain.QueryStatus) domain.CacheEntry {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case e := <-r.ch:
			if e.Status == status {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", status)
			return domain.CacheEntry{}
		}
	}
}

func (r *recorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case e := <-r.ch:
		t.Fatalf("unexpected notification: %s v%d", e.Status, e.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeAPI is an in-memory support API with just enough behaviour for
// mutation cascades: generated responses are prepended, sends flip isSent
// and mark the email responded.
type fakeAPI struct {
	mu        sync.Mutex
	emails    []domain.Email
	responses map[string][]domain.Response
	failures  map[string]error
	hits      map[string]int
	nextID    int
	clock     time.Time
}

func newFakeAPI(emails ...domain.Email) *fakeAPI {
	return &fakeAPI{
		emails:    emails,
		responses: make(map[string][]domain.Response),
		failures:  make(map[string]error),
		hits:      make(map[string]int),
		clock:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

// failOn makes "METHOD path" fail with a 500.
func (a *fakeAPI) failOn(method, path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[method+" "+path] = &domain.RequestError{Method: method, Resource: path, StatusCode: http.StatusInternalServerError}
}

func (a *fakeAPI) hitCount(method, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[method+" "+path]
}

func (a *fakeAPI) seedResponse(r domain.Response) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[r.EmailID] = append([]domain.Response{r}, a.responses[r.EmailID]...)
}

func (a *fakeAPI) Do(_ context.Context, req driven.ResourceRequest) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	a.hits[method+" "+req.Path]++
	if err, ok := a.failures[method+" "+req.Path]; ok {
		return nil, err
	}

	parts := strings.Split(req.Path, "/")
	switch {
	case method == http.MethodGet && req.Path == "emails":
		return json.Marshal(a.emails)
	case method == http.MethodGet && len(parts) == 3 && parts[0] == "emails" && parts[2] == "responses":
		return json.Marshal(a.responses[parts[1]])
	case method == http.MethodPost && len(parts) == 3 && parts[0] == "emails" && parts[2] == "generate-response":
		a.nextID++
		a.clock = a.clock.Add(time.Minute)
		r := domain.Response{
			ID:        fmt.Sprintf("r%d", a.nextID),
			EmailID:   parts[1],
			Content:   "Thanks for reaching out.",
			Tone:      "professional",
			IsSent:    false,
			CreatedAt: a.clock,
		}
		a.responses[parts[1]] = append([]domain.Response{r}, a.responses[parts[1]]...)
		a.setStatus(parts[1], domain.EmailStatusProcessing)
		return json.Marshal(r)
	case method == http.MethodPatch && len(parts) == 2 && parts[0] == "responses":
		raw, _ := json.Marshal(req.Body)
		var body struct {
			Content string `json:"content"`
		}
		_ = json.Unmarshal(raw, &body)
		if r := a.findResponse(parts[1]); r != nil {
			r.Content = body.Content
			return json.Marshal(r)
		}
	case method == http.MethodPost && len(parts) == 3 && parts[0] == "responses" && parts[2] == "send":
		if r := a.findResponse(parts[1]); r != nil {
			r.IsSent = true
			a.setStatus(r.EmailID, domain.EmailStatusResponded)
			return json.Marshal(r)
		}
	case method == http.MethodGet && req.Path == "analytics":
		snap := domain.AnalyticsSnapshot{TotalEmails: len(a.emails)}
		for _, e := range a.emails {
			if e.Priority == domain.PriorityUrgent {
				snap.UrgentEmails++
			}
			switch e.Status {
			case domain.EmailStatusResolved, domain.EmailStatusResponded:
				snap.ResolvedEmails++
			default:
				snap.PendingEmails++
			}
		}
		return json.Marshal(snap)
	case method == http.MethodGet && req.Path == "analytics/volume":
		return json.Marshal([]map[string]any{
			{"date": "2024-05-01", "count": len(a.emails)},
			{"date": "2024-05-02", "count": len(req.Query.Get("days"))},
		})
	case method == http.MethodGet && req.Path == "analytics/sentiment":
		counts := map[domain.Sentiment]int{}
		for _, e := range a.emails {
			counts[e.Sentiment]++
		}
		out := make([]domain.SentimentCount, 0, len(counts))
		for s, n := range counts {
			out = append(out, domain.SentimentCount{Sentiment: s, Count: n})
		}
		return json.Marshal(out)
	}
	return nil, &domain.RequestError{Method: method, Resource: req.Path, StatusCode: http.StatusNotFound}
}

// findResponse requires a.mu.
func (a *fakeAPI) findResponse(id string) *domain.Response {
	for emailID := range a.responses {
		for i := range a.responses[emailID] {
			if a.responses[emailID][i].ID == id {
				return &a.responses[emailID][i]
			}
		}
	}
	return nil
}

// setStatus requires a.mu.
func (a *fakeAPI) setStatus(emailID string, status domain.EmailStatus) {
	for i := range a.emails {
		if a.emails[i].ID == emailID {
			a.emails[i].Status = status
		}
	}
}

func testEmails() []domain.Email {
	return []domain.Email{
		{ID: "a", Sender: "ann@example.com", Subject: "Cannot log in", Priority: domain.PriorityUrgent, Sentiment: domain.SentimentNegative, Status: domain.EmailStatusNew},
		{ID: "b", Sender: "bob@example.com", Subject: "Thanks", Priority: domain.PriorityLow, Sentiment: domain.SentimentPositive, Status: domain.EmailStatusResolved},
		{ID: "c", Sender: "cy@example.com", Subject: "Refund", Priority: domain.PriorityUrgent, Sentiment: domain.SentimentNeutral, Status: domain.EmailStatusNew},
	}
}

// fakeHandle records its lifecycle on the shared event log.
type fakeHandle struct {
	id        int
	data      any
	spec      *fakeSpec
	destroyed bool
}

func (h *fakeHandle) View(int, int) string { return fmt.Sprintf("handle-%d", h.id) }

func (h *fakeHandle) Destroy() error {
	h.spec.mu.Lock()
	h.destroyed = true
	h.spec.mu.Unlock()
	h.spec.log.add(fmt.Sprintf("destroy:%d", h.id))
	return nil
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// fakeSpec builds fakeHandles. When failNext is set, the next build
// returns a partial handle together with an error.
type fakeSpec struct {
	name string
	log  *eventLog

	mu       sync.Mutex
	built    int
	failNext bool
	handles  []*fakeHandle
}

func (s *fakeSpec) Name() string { return s.name }

func (s *fakeSpec) Build(data any) (driven.RenderHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.built++
	h := &fakeHandle{id: s.built, data: data, spec: s}
	s.handles = append(s.handles, h)
	s.log.add(fmt.Sprintf("create:%d", h.id))
	if s.failNext {
		s.failNext = false
		return h, fmt.Errorf("canvas unavailable")
	}
	return h, nil
}

func (s *fakeSpec) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.handles {
		if !h.destroyed {
			n++
		}
	}
	return n
}
