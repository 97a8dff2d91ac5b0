package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
	"github.com/custodia-labs/deskpilot/internal/logger"
)

// DefaultGCDelay is how long an entry nobody subscribes to is kept.
const DefaultGCDelay = 5 * time.Minute

// Listener receives a snapshot on every transition of a subscribed key.
type Listener func(domain.CacheEntry)

// QueryCacheOption configures a QueryCache.
type QueryCacheOption func(*QueryCache)

// WithGCDelay sets the retention of unobserved entries. Zero evicts an
// entry as soon as it has no subscribers and no fetch in flight.
func WithGCDelay(d time.Duration) QueryCacheOption {
	return func(c *QueryCache) {
		if d >= 0 {
			c.gcDelay = d
		}
	}
}

// WithFetcher registers or replaces the fetcher for a resource name.
func WithFetcher(name string, f Fetcher) QueryCacheOption {
	return func(c *QueryCache) {
		c.fetchers[name] = f
	}
}

type subscription struct {
	id uint64
	fn Listener
}

// cacheEntry is the mutable state behind a domain.CacheEntry snapshot.
// All fields are guarded by QueryCache.mu.
type cacheEntry struct {
	key        domain.CacheKey
	data       any
	status     domain.QueryStatus
	err        error
	generation uint64
	version    uint64
	stale      bool

	// seq is the most recently issued request for this entry. Only a
	// response carrying this number may be applied.
	seq      uint64
	inFlight bool

	subs    []subscription
	gcTimer *time.Timer
}

func (e *cacheEntry) snapshot() domain.CacheEntry {
	return domain.CacheEntry{
		Key:        e.key,
		Data:       e.data,
		Status:     e.status,
		Err:        e.err,
		Generation: e.generation,
		Version:    e.version,
		Stale:      e.stale,
	}
}

type notification struct {
	owner *cacheEntry
	entry domain.CacheEntry
}

// QueryCache maps cache keys to fetched resources. It deduplicates reads
// of the same key, discards superseded responses and notifies subscribers
// of every transition.
//
// Notifications are delivered in transition order, one at a time. A
// listener may call back into the cache; the resulting notifications are
// queued behind the current one rather than delivered re-entrantly.
type QueryCache struct {
	client   driven.ResourceClient
	fetchers map[string]Fetcher
	gcDelay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	entries  map[string]*cacheEntry
	nextSeq  uint64
	nextSub  uint64
	closed   bool
	queue    []notification
	flushing bool
}

// NewQueryCache creates a cache for one application session.
func NewQueryCache(client driven.ResourceClient, opts ...QueryCacheOption) *QueryCache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &QueryCache{
		client:   client,
		fetchers: DefaultFetchers(),
		gcDelay:  DefaultGCDelay,
		ctx:      ctx,
		cancel:   cancel,
		entries:  make(map[string]*cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read returns the current snapshot for key. An absent or stale entry
// starts a fetch and is returned in loading state. A fetch already in
// flight is shared rather than repeated.
func (c *QueryCache) Read(key domain.CacheKey) domain.CacheEntry {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return closedEntry(key)
	}
	e := c.entry(key)
	if !e.inFlight && (e.status == domain.StatusIdle || e.stale) {
		c.startFetch(e)
	}
	snap := e.snapshot()
	c.mu.Unlock()

	c.flush()
	return snap
}

// Peek returns the snapshot for key without scheduling a fetch.
func (c *QueryCache) Peek(key domain.CacheKey) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return domain.CacheEntry{}, false
	}
	return e.snapshot(), true
}

// Subscribe registers fn for every transition of key and returns a func
// that removes it. Subscribing does not fetch; call Read for that.
func (c *QueryCache) Subscribe(key domain.CacheKey, fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return func() {}
	}
	e := c.entry(key)
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	c.nextSub++
	id := c.nextSub
	e.subs = append(e.subs, subscription{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(e, id) })
	}
}

func (c *QueryCache) unsubscribe(e *cacheEntry, id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			break
		}
	}
	if len(e.subs) == 0 && c.entries[e.key.String()] == e {
		c.scheduleGC(e)
	}
}

// Invalidate refetches key if anyone subscribes to it. Current data stays
// visible while the fetch runs, and a fetch already in flight is
// superseded: its response will be discarded. An unobserved entry is
// only marked stale and refetches on its next Read.
func (c *QueryCache) Invalidate(key domain.CacheKey) {
	c.mu.Lock()
	if e, ok := c.entries[key.String()]; ok && !c.closed {
		c.invalidate(e)
	}
	c.mu.Unlock()
	c.flush()
}

// InvalidateMatching invalidates every entry whose key has prefix.
func (c *QueryCache) InvalidateMatching(prefix domain.CacheKey) {
	c.mu.Lock()
	if !c.closed {
		matched := make([]*cacheEntry, 0)
		for _, e := range c.entries {
			if e.key.HasPrefix(prefix) {
				matched = append(matched, e)
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].key.String() < matched[j].key.String()
		})
		for _, e := range matched {
			c.invalidate(e)
		}
	}
	c.mu.Unlock()
	c.flush()
}

// invalidate requires c.mu.
func (c *QueryCache) invalidate(e *cacheEntry) {
	if len(e.subs) > 0 {
		c.startFetch(e)
		return
	}
	if !e.stale {
		e.stale = true
		e.version++
	}
	logger.Debug("cache: %s marked stale", e.key)
}

// Await returns the settled snapshot for key, fetching it if needed.
// An entry whose last fetch failed is fetched again. A failed fetch is
// returned together with its error.
func (c *QueryCache) Await(ctx context.Context, key domain.CacheKey) (domain.CacheEntry, error) {
	settled := make(chan domain.CacheEntry, 1)
	unsubscribe := c.Subscribe(key, func(e domain.CacheEntry) {
		if e.Settled() {
			select {
			case settled <- e:
			default:
			}
		}
	})
	defer unsubscribe()

	snap := c.Read(key)
	switch {
	case snap.Status == domain.StatusSuccess:
		return snap, nil
	case snap.Status == domain.StatusError:
		if errors.Is(snap.Err, domain.ErrSessionClosed) {
			return snap, snap.Err
		}
		c.Invalidate(key)
	}

	select {
	case e := <-settled:
		if e.Status == domain.StatusError {
			return e, e.Err
		}
		return e, nil
	case <-ctx.Done():
		return snap, ctx.Err()
	case <-c.ctx.Done():
		return snap, domain.ErrSessionClosed
	}
}

// Close ends the session: fetches are cancelled, every entry is dropped
// and no further notifications are delivered.
func (c *QueryCache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, e := range c.entries {
		if e.gcTimer != nil {
			e.gcTimer.Stop()
		}
		e.subs = nil
	}
	c.entries = make(map[string]*cacheEntry)
	c.queue = nil
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	logger.Debug("cache: session closed")
}

// entry returns the entry for key, creating an idle one (caller holds c.mu).
func (c *QueryCache) entry(key domain.CacheKey) *cacheEntry {
	k := key.String()
	e, ok := c.entries[k]
	if !ok {
		e = &cacheEntry{
			key:    domain.NewKey(key.Name, append([]string(nil), key.Params...)...),
			status: domain.StatusIdle,
		}
		c.entries[k] = e
	}
	return e
}

// startFetch issues a new request for e (caller holds c.mu).
func (c *QueryCache) startFetch(e *cacheEntry) {
	c.nextSeq++
	seq := c.nextSeq
	e.seq = seq
	e.inFlight = true
	e.stale = false
	if e.status != domain.StatusLoading {
		e.status = domain.StatusLoading
		e.err = nil
		e.version++
		c.enqueue(e)
	}
	logger.Debug("cache: fetch %s (request %d)", e.key, seq)

	c.wg.Add(1)
	go c.runFetch(e, seq)
}

func (c *QueryCache) runFetch(e *cacheEntry, seq uint64) {
	defer c.wg.Done()

	var data any
	var err error
	if fetch, ok := c.fetchers[e.key.Name]; ok {
		data, err = fetch(c.ctx, c.client, e.key)
	} else {
		err = fmt.Errorf("%w: %s", domain.ErrUnknownResource, e.key.Name)
	}

	c.mu.Lock()
	if c.closed || c.entries[e.key.String()] != e || e.seq != seq {
		c.mu.Unlock()
		logger.Debug("cache: discarding stale response for %s (request %d)", e.key, seq)
		return
	}

	e.inFlight = false
	e.version++
	if err != nil {
		e.status = domain.StatusError
		e.err = err
		logger.Warn("cache: fetch %s failed: %v", e.key, err)
	} else {
		e.status = domain.StatusSuccess
		e.data = data
		e.err = nil
		e.generation++
		logger.Debug("cache: applied %s generation %d (request %d)", e.key, e.generation, seq)
	}
	c.enqueue(e)
	if len(e.subs) == 0 {
		c.scheduleGC(e)
	}
	c.mu.Unlock()

	c.flush()
}

// scheduleGC arranges eviction of an unobserved entry (caller holds c.mu).
// Entries with a fetch in flight are rescheduled when it settles.
func (c *QueryCache) scheduleGC(e *cacheEntry) {
	if e.inFlight {
		return
	}
	if c.gcDelay == 0 {
		c.evict(e)
		return
	}
	if e.gcTimer != nil {
		e.gcTimer.Stop()
	}
	e.gcTimer = time.AfterFunc(c.gcDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if len(e.subs) == 0 && !e.inFlight {
			c.evict(e)
		}
	})
}

// evict requires c.mu.
func (c *QueryCache) evict(e *cacheEntry) {
	k := e.key.String()
	if c.entries[k] == e {
		delete(c.entries, k)
		logger.Debug("cache: evicted %s", e.key)
	}
}

// enqueue requires c.mu.
func (c *QueryCache) enqueue(e *cacheEntry) {
	if len(e.subs) == 0 {
		return
	}
	c.queue = append(c.queue, notification{owner: e, entry: e.snapshot()})
}

// flush delivers queued notifications in order. Only one goroutine
// delivers at a time; others leave their notifications to it.
func (c *QueryCache) flush() {
	c.mu.Lock()
	if c.flushing {
		c.mu.Unlock()
		return
	}
	c.flushing = true
	for len(c.queue) > 0 && !c.closed {
		n := c.queue[0]
		c.queue = c.queue[1:]
		subs := append([]subscription(nil), n.owner.subs...)
		c.mu.Unlock()

		for _, s := range subs {
			if c.subscribed(n.owner, s.id) {
				s.fn(n.entry)
			}
		}

		c.mu.Lock()
	}
	c.flushing = false
	c.mu.Unlock()
}

// subscribed reports whether subscription id is still registered on e.
func (c *QueryCache) subscribed(e *cacheEntry, id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	for _, s := range e.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

func closedEntry(key domain.CacheKey) domain.CacheEntry {
	return domain.CacheEntry{Key: key, Status: domain.StatusError, Err: domain.ErrSessionClosed}
}
