package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driving"
)

// DashboardConfig wires optional collaborators into a Dashboard.
type DashboardConfig struct {
	// TimeRange is the initial volume chart window. Defaults to a week.
	TimeRange domain.TimeRange

	// VolumeChart and SentimentChart build the two visualizations.
	// A nil spec leaves that chart unbound.
	VolumeChart    driven.RenderSpec
	SentimentChart driven.RenderSpec

	// OnNotice receives transient success and failure notices.
	OnNotice func(domain.Notice)
}

// Ensure Dashboard implements the interface.
var _ driving.DashboardService = (*Dashboard)(nil)

type flowKey struct {
	emailID string
	action  string
}

// Dashboard composes the cache, pipeline and visualizer into the state
// the interactive views render: a filtered email list, the selection with
// its responses, analytics and the two charts.
//
// Filter changes are local projections over the cached collection and
// never touch the network.
type Dashboard struct {
	cache    *QueryCache
	pipeline *MutationPipeline
	viz      *Visualizer
	cfg      DashboardConfig

	mu        sync.Mutex
	filter    domain.Filter
	selected  string
	timeRange domain.TimeRange
	pending   map[flowKey]domain.ResponseFlow
	onChange  func()
	mounted   bool
	unsubs    []func()
	selUnsub  func()
	volUnsub  func()
	volume    *Binding
	sentiment *Binding
}

// NewDashboard creates a dashboard. It does nothing until Mount.
func NewDashboard(cache *QueryCache, pipeline *MutationPipeline, viz *Visualizer, cfg DashboardConfig) *Dashboard {
	if !cfg.TimeRange.IsValid() {
		cfg.TimeRange = domain.RangeWeek
	}
	return &Dashboard{
		cache:     cache,
		pipeline:  pipeline,
		viz:       viz,
		cfg:       cfg,
		filter:    domain.DefaultFilter(),
		timeRange: cfg.TimeRange,
		pending:   make(map[flowKey]domain.ResponseFlow),
	}
}

// Mount subscribes to every resource the dashboard shows and binds the
// charts. onChange runs after any of them changes, on an arbitrary
// goroutine.
func (d *Dashboard) Mount(onChange func()) {
	d.mu.Lock()
	if d.mounted {
		d.mu.Unlock()
		return
	}
	d.mounted = true
	d.onChange = onChange
	selected := d.selected
	d.mu.Unlock()

	for _, key := range []domain.CacheKey{domain.EmailsKey(), domain.AnalyticsKey()} {
		d.watch(key)
	}

	d.bindVolume()
	if d.cfg.SentimentChart != nil {
		b := d.viz.Bind(domain.SentimentKey(), d.cfg.SentimentChart, OnRebind(d.changed))
		d.mu.Lock()
		if d.mounted && d.sentiment == nil {
			d.sentiment = b
			b = nil
		}
		d.mu.Unlock()
		if b != nil {
			b.Close()
		}
	} else {
		d.watch(domain.SentimentKey())
	}

	if selected != "" {
		d.Select(selected)
	}
}

// Unmount releases every subscription and destroys both charts.
func (d *Dashboard) Unmount() {
	d.mu.Lock()
	if !d.mounted {
		d.mu.Unlock()
		return
	}
	d.mounted = false
	unsubs := append(d.unsubs, d.selUnsub, d.volUnsub)
	volume, sentiment := d.volume, d.sentiment
	d.unsubs, d.selUnsub, d.volUnsub = nil, nil, nil
	d.volume, d.sentiment = nil, nil
	d.onChange = nil
	d.mu.Unlock()

	for _, unsub := range unsubs {
		if unsub != nil {
			unsub()
		}
	}
	for _, b := range []*Binding{volume, sentiment} {
		if b != nil {
			b.Close()
		}
	}
}

// Filter returns the active filter.
func (d *Dashboard) Filter() domain.Filter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter
}

// SetFilter replaces the active filter.
func (d *Dashboard) SetFilter(f domain.Filter) error {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	d.filter = f
	d.mu.Unlock()
	d.changed()
	return nil
}

// ApplyPreset switches to a sidebar quick filter, keeping the search query.
func (d *Dashboard) ApplyPreset(p domain.Preset) {
	d.mu.Lock()
	query := d.filter.Query
	d.filter = domain.PresetFilter(p)
	d.filter.Query = query
	d.mu.Unlock()
	d.changed()
}

// Emails returns the raw email list entry.
func (d *Dashboard) Emails() domain.CacheEntry {
	e, _ := d.cache.Peek(domain.EmailsKey())
	return e
}

// FilteredEmails returns the cached collection narrowed by the active filter.
func (d *Dashboard) FilteredEmails() []domain.Email {
	emails, _ := domain.DataAs[[]domain.Email](d.Emails())
	return d.Filter().Apply(emails)
}

// Select makes id the selected email and starts loading its responses.
// An empty id clears the selection.
func (d *Dashboard) Select(id string) {
	d.mu.Lock()
	prev := d.selUnsub
	d.selUnsub = nil
	d.selected = id
	mounted := d.mounted
	d.mu.Unlock()

	if prev != nil {
		prev()
	}
	if id != "" && mounted {
		key := domain.ResponsesKey(id)
		unsub := d.cache.Subscribe(key, d.listen)
		d.mu.Lock()
		if d.selected == id && d.mounted {
			d.selUnsub = unsub
			unsub = nil
		}
		d.mu.Unlock()
		if unsub != nil {
			unsub()
		} else {
			d.cache.Read(key)
		}
	}
	d.changed()
}

// Selected returns the selected email id.
func (d *Dashboard) Selected() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selected
}

// Detail joins the selected email with its responses. It returns false
// when nothing is selected or the email is not in the cached list.
func (d *Dashboard) Detail() (*driving.DetailView, bool) {
	id := d.Selected()
	if id == "" {
		return nil, false
	}
	emails, _ := domain.DataAs[[]domain.Email](d.Emails())
	var view driving.DetailView
	found := false
	for i := range emails {
		if emails[i].ID == id {
			view.Email = emails[i]
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}

	if entry, ok := d.cache.Peek(domain.ResponsesKey(id)); ok {
		view.Responses, _ = domain.DataAs[[]domain.Response](entry)
		view.Status = entry.Status
		view.Err = entry.Err
	} else {
		view.Status = domain.StatusLoading
	}
	view.Flow = d.flow(id, view.Responses)
	return &view, true
}

// Flow returns the response flow state of an email.
func (d *Dashboard) Flow(emailID string) domain.ResponseFlow {
	entry, _ := d.cache.Peek(domain.ResponsesKey(emailID))
	responses, _ := domain.DataAs[[]domain.Response](entry)
	return d.flow(emailID, responses)
}

func (d *Dashboard) flow(emailID string, responses []domain.Response) domain.ResponseFlow {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, action := range []string{ActionGenerate, ActionSend} {
		if f, ok := d.pending[flowKey{emailID, action}]; ok {
			return f
		}
	}
	return domain.StableFlow(responses)
}

// Pending reports whether action is running for emailID.
func (d *Dashboard) Pending(emailID, action string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[flowKey{emailID, action}]
	return ok
}

// Generate drafts a response for emailID. The flow reads Generating
// until the write settles and reverts on failure.
func (d *Dashboard) Generate(ctx context.Context, emailID string) error {
	err := d.run(emailID, ActionGenerate, domain.FlowGenerating, func() error {
		_, err := d.pipeline.GenerateResponse(ctx, emailID)
		return err
	})
	d.report(err, "Response Generated", "AI response has been generated successfully.",
		"Failed to generate AI response. Please try again.")
	return err
}

// SaveResponse replaces the content of the current response of emailID.
// Blank content fails with domain.ErrValidation and nothing is written.
func (d *Dashboard) SaveResponse(ctx context.Context, emailID, content string) error {
	err := d.saveResponse(ctx, emailID, content)
	d.report(err, "Response Updated", "Response has been updated successfully.",
		"Failed to update the response. Please try again.")
	return err
}

func (d *Dashboard) saveResponse(ctx context.Context, emailID, content string) error {
	if _, err := domain.ValidateResponseContent(content); err != nil {
		return fmt.Errorf("response content is empty: %w", err)
	}
	current, err := d.current(emailID)
	if err != nil {
		return err
	}
	return d.run(emailID, ActionUpdate, 0, func() error {
		_, err := d.pipeline.UpdateResponse(ctx, emailID, current.ID, content)
		return err
	})
}

// Send sends the current response of emailID.
func (d *Dashboard) Send(ctx context.Context, emailID string) error {
	err := d.send(ctx, emailID)
	d.report(err, "Response Sent", "Email response has been sent successfully.",
		"Failed to send the response. Please try again.")
	return err
}

func (d *Dashboard) send(ctx context.Context, emailID string) error {
	current, err := d.current(emailID)
	if err != nil {
		return err
	}
	if current.IsSent {
		return domain.ErrAlreadySent
	}
	return d.run(emailID, ActionSend, domain.FlowSending, func() error {
		_, err := d.pipeline.SendResponse(ctx, emailID, current.ID)
		return err
	})
}

// RefreshAll refetches the email list and every analytics resource.
func (d *Dashboard) RefreshAll() {
	refreshAll(d.cache)
}

// Analytics returns the analytics snapshot entry.
func (d *Dashboard) Analytics() domain.CacheEntry {
	e, _ := d.cache.Peek(domain.AnalyticsKey())
	return e
}

// Volume returns the volume series entry for the active time range.
func (d *Dashboard) Volume() domain.CacheEntry {
	e, _ := d.cache.Peek(domain.VolumeKey(d.TimeRange()))
	return e
}

// Sentiment returns the sentiment distribution entry.
func (d *Dashboard) Sentiment() domain.CacheEntry {
	e, _ := d.cache.Peek(domain.SentimentKey())
	return e
}

// TimeRange returns the volume chart window.
func (d *Dashboard) TimeRange() domain.TimeRange {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timeRange
}

// SetTimeRange switches the volume chart window. The old chart binding
// is closed before the new key is bound.
func (d *Dashboard) SetTimeRange(r domain.TimeRange) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: time range %d", domain.ErrInvalidInput, r)
	}
	d.mu.Lock()
	if d.timeRange == r {
		d.mu.Unlock()
		return nil
	}
	d.timeRange = r
	old, oldUnsub := d.volume, d.volUnsub
	d.volume, d.volUnsub = nil, nil
	mounted := d.mounted
	d.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if oldUnsub != nil {
		oldUnsub()
	}
	if mounted {
		d.bindVolume()
	}
	d.changed()
	return nil
}

// VolumeChart returns the volume binding, or nil when unbound.
func (d *Dashboard) VolumeChart() driving.Chart {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.volume == nil {
		return nil
	}
	return d.volume
}

// SentimentChart returns the sentiment binding, or nil when unbound.
func (d *Dashboard) SentimentChart() driving.Chart {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sentiment == nil {
		return nil
	}
	return d.sentiment
}

func (d *Dashboard) bindVolume() {
	key := domain.VolumeKey(d.TimeRange())
	if d.cfg.VolumeChart == nil {
		unsub := d.cache.Subscribe(key, d.listen)
		d.mu.Lock()
		if d.mounted && d.volUnsub == nil {
			d.volUnsub = unsub
			unsub = nil
		}
		d.mu.Unlock()
		if unsub != nil {
			unsub()
			return
		}
		d.cache.Read(key)
		return
	}
	b := d.viz.Bind(key, d.cfg.VolumeChart, OnRebind(d.changed))
	d.mu.Lock()
	if d.mounted && d.volume == nil {
		d.volume = b
		b = nil
	}
	d.mu.Unlock()
	if b != nil {
		b.Close()
	}
}

// watch subscribes to key for change notifications only. A subscription
// that lands after Unmount is released at once.
func (d *Dashboard) watch(key domain.CacheKey) {
	unsub := d.cache.Subscribe(key, d.listen)
	d.mu.Lock()
	if d.mounted {
		d.unsubs = append(d.unsubs, unsub)
		unsub = nil
	}
	d.mu.Unlock()
	if unsub != nil {
		unsub()
		return
	}
	d.cache.Read(key)
}

// current returns the current response of emailID from the cache.
func (d *Dashboard) current(emailID string) (domain.Response, error) {
	entry, _ := d.cache.Peek(domain.ResponsesKey(emailID))
	responses, _ := domain.DataAs[[]domain.Response](entry)
	current, ok := domain.LatestResponse(responses)
	if !ok {
		return domain.Response{}, domain.ErrNoResponse
	}
	return current, nil
}

// run marks action pending for emailID while fn executes. A second run of
// the same action for the same email fails with domain.ErrActionPending.
func (d *Dashboard) run(emailID, action string, flow domain.ResponseFlow, fn func() error) error {
	key := flowKey{emailID, action}
	d.mu.Lock()
	if _, busy := d.pending[key]; busy {
		d.mu.Unlock()
		return domain.ErrActionPending
	}
	d.pending[key] = flow
	d.mu.Unlock()
	d.changed()

	err := fn()

	d.mu.Lock()
	delete(d.pending, key)
	d.mu.Unlock()
	d.changed()
	return err
}

func (d *Dashboard) report(err error, title, success, failure string) {
	if d.cfg.OnNotice == nil {
		return
	}
	n := domain.Notice{ID: uuid.NewString(), Level: domain.NoticeInfo, Title: title, Message: success}
	if err != nil {
		n.Level = domain.NoticeError
		n.Title = "Error"
		switch {
		case errors.Is(err, domain.ErrValidation):
			n.Message = "Response content cannot be empty."
		case errors.Is(err, domain.ErrNoResponse):
			n.Message = "Generate a response first."
		case errors.Is(err, domain.ErrAlreadySent):
			n.Message = "This response has already been sent."
		case errors.Is(err, domain.ErrActionPending):
			n.Message = "Still working on the previous request."
		default:
			n.Message = failure
		}
	}
	d.cfg.OnNotice(n)
}

func (d *Dashboard) listen(domain.CacheEntry) {
	d.changed()
}

func (d *Dashboard) changed() {
	d.mu.Lock()
	fn := d.onChange
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}
