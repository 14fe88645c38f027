// Package cache holds the shared, concurrency-safe view of loaded formats.
// Formats and their registries are single-writer structures; this cache is the
// lock around them.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"magnetunits/internal/core/apperror"
	"magnetunits/internal/format"
	"magnetunits/pkg/logger"
)

// NotifyChannel is the postgres channel carrying changed format names.
const NotifyChannel = "format_definitions_changed"

// Source supplies stored format documents.
type Source interface {
	Get(ctx context.Context, name string) (format.Document, error)
	List(ctx context.Context) ([]format.Document, error)
}

// EventKind classifies cache changes.
type EventKind string

const (
	EventStored  EventKind = "stored"
	EventEvicted EventKind = "evicted"
)

// Event describes one cache change.
type Event struct {
	Kind EventKind
	Name string
}

// InvalidationListener is called after every cache change.
type InvalidationListener func(Event)

// FormatCache maps format names to built definitions.
type FormatCache struct {
	loader *format.Loader
	source Source
	pool   *pgxpool.Pool
	log    *logger.Logger

	mu      sync.RWMutex
	formats map[string]*format.FormatDefinition

	listeners   []InvalidationListener
	listenersMu sync.RWMutex

	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

type Option func(*FormatCache)

// WithSource makes Start preload formats and lets notifications reload them.
func WithSource(src Source) Option {
	return func(c *FormatCache) { c.source = src }
}

// WithNotifications enables LISTEN on NotifyChannel. Requires a source.
func WithNotifications(pool *pgxpool.Pool) Option {
	return func(c *FormatCache) { c.pool = pool }
}

func WithLogger(log *logger.Logger) Option {
	return func(c *FormatCache) { c.log = log }
}

func NewFormatCache(loader *format.Loader, opts ...Option) *FormatCache {
	c := &FormatCache{
		loader:  loader,
		formats: make(map[string]*format.FormatDefinition),
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("format_cache")
	return c
}

// Start loads every stored format and, when configured, begins listening for
// change notifications.
func (c *FormatCache) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.lifecycleMu.Lock()
	if c.started {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.lifecycleMu.Unlock()

	if c.source != nil {
		if err := c.loadAll(c.ctx); err != nil {
			c.Stop()
			return fmt.Errorf("load formats: %w", err)
		}
	}

	if c.pool != nil && c.source != nil {
		c.wg.Add(1)
		go c.listenLoop()
	}
	c.log.WithContext(c.ctx).Infow("format cache started", "formats", c.Len())
	return nil
}

// Stop ends the listener. Cached formats stay available.
func (c *FormatCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	c.log.Infow("format cache stopped")
}

func (c *FormatCache) listenLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			c.log.Errorw("failed to acquire connection for LISTEN", "error", err)
			c.sleep(time.Second)
			continue
		}

		if _, err := conn.Exec(c.ctx, "LISTEN "+NotifyChannel); err != nil {
			c.log.Errorw("failed to LISTEN", "error", err)
			conn.Release()
			c.sleep(time.Second)
			continue
		}
		c.log.Infow("listening for format notifications", "channel", NotifyChannel)

		c.waitForNotifications(conn)
		conn.Release()
	}
}

func (c *FormatCache) sleep(d time.Duration) {
	select {
	case <-c.ctx.Done():
	case <-time.After(d):
	}
}

func (c *FormatCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		n, err := conn.Conn().WaitForNotification(ctx)
		cancel()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if ctx.Err() != nil {
				// timeout, keep waiting
				continue
			}
			c.log.Warnw("notification wait failed, reconnecting", "error", err)
			return
		}

		c.log.Debugw("received notification", "channel", n.Channel, "payload", n.Payload)
		c.HandleNotification(c.ctx, n.Payload)
	}
}

// HandleNotification reloads the named format from the source, evicting it
// when the source no longer has it. An empty payload reloads everything.
func (c *FormatCache) HandleNotification(ctx context.Context, payload string) {
	if c.source == nil {
		return
	}
	name := strings.TrimSpace(payload)
	if name == "" {
		if err := c.loadAll(ctx); err != nil {
			c.log.WithContext(ctx).Errorw("failed to reload formats", "error", err)
		}
		return
	}

	doc, err := c.source.Get(ctx, name)
	if err != nil {
		if apperror.IsNotFound(err) {
			c.Remove(name)
			return
		}
		c.log.WithContext(ctx).Errorw("failed to reload format", "format", name, "error", err)
		return
	}
	c.Put(c.loader.FromDocument(ctx, doc))
}

func (c *FormatCache) loadAll(ctx context.Context) error {
	docs, err := c.source.List(ctx)
	if err != nil {
		return err
	}
	built := make(map[string]*format.FormatDefinition, len(docs))
	for _, doc := range docs {
		built[doc.FormatName] = c.loader.FromDocument(ctx, doc)
	}

	c.mu.Lock()
	old := c.formats
	c.formats = built
	c.mu.Unlock()

	for name := range old {
		if _, ok := built[name]; !ok {
			c.notify(Event{Kind: EventEvicted, Name: name})
		}
	}
	for name := range built {
		c.notify(Event{Kind: EventStored, Name: name})
	}
	c.log.WithContext(ctx).Infow("loaded formats", "count", len(built))
	return nil
}

// Put stores def under its name, replacing any previous entry.
func (c *FormatCache) Put(def *format.FormatDefinition) {
	if def == nil {
		return
	}
	c.mu.Lock()
	c.formats[def.Name()] = def
	c.mu.Unlock()
	c.notify(Event{Kind: EventStored, Name: def.Name()})
}

func (c *FormatCache) Get(name string) (*format.FormatDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.formats[name]
	return def, ok
}

// Lookup is Get returning a NOT_FOUND error on miss.
func (c *FormatCache) Lookup(name string) (*format.FormatDefinition, error) {
	if def, ok := c.Get(name); ok {
		return def, nil
	}
	return nil, apperror.NewNotFound("format", name)
}

// Remove evicts a format and reports whether it was cached.
func (c *FormatCache) Remove(name string) bool {
	c.mu.Lock()
	_, ok := c.formats[name]
	delete(c.formats, name)
	c.mu.Unlock()
	if ok {
		c.notify(Event{Kind: EventEvicted, Name: name})
	}
	return ok
}

// Names returns the cached format names, sorted.
func (c *FormatCache) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.formats))
	for n := range c.formats {
		names = append(names, n)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// List returns the cached formats sorted by name.
func (c *FormatCache) List() []*format.FormatDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*format.FormatDefinition, 0, len(c.formats))
	for _, def := range c.formats {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (c *FormatCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.formats)
}

// OnInvalidation registers a callback for cache changes.
func (c *FormatCache) OnInvalidation(listener InvalidationListener) {
	c.listenersMu.Lock()
	c.listeners = append(c.listeners, listener)
	c.listenersMu.Unlock()
}

// notify runs listeners inline, recovering panics.
func (c *FormatCache) notify(ev Event) {
	c.listenersMu.RLock()
	defer c.listenersMu.RUnlock()
	for _, listener := range c.listeners {
		func(l InvalidationListener) {
			defer func() {
				if r := recover(); r != nil {
					c.log.Errorw("listener panic recovered", "format", ev.Name, "panic", r)
				}
			}()
			l(ev)
		}(listener)
	}
}

// Stats describes the cache contents.
type Stats struct {
	Formats  int      `json:"formats"`
	Fields   int      `json:"fields"`
	Warnings int      `json:"warnings"`
	Names    []string `json:"names"`
}

func (c *FormatCache) Stats() Stats {
	c.mu.RLock()
	s := Stats{Formats: len(c.formats)}
	for _, def := range c.formats {
		s.Fields += def.Len()
		s.Warnings += len(def.Warnings())
	}
	c.mu.RUnlock()
	s.Names = c.Names()
	return s
}
