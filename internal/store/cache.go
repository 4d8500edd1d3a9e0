package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/todo-assistant/internal/models"
)

// Clock is injected so tests can advance time.
type Clock func() time.Time

// Cache is a bounded TTL map over read results, keyed by user plus query
// shape. Invalidation is user-scoped: after any mutation for a user, no
// reader may observe that user's pre-mutation data.
type Cache struct {
	ttl   time.Duration
	max   int
	clock Clock

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	userID    string
	tasks     []*models.Task
	expiresAt time.Time
}

func NewCache(ttl time.Duration, max int, clock Clock) *Cache {
	if clock == nil {
		clock = time.Now
	}
	if max <= 0 {
		max = 256
	}
	return &Cache{ttl: ttl, max: max, clock: clock, entries: map[string]cacheEntry{}}
}

func (c *Cache) get(key string) ([]*models.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.tasks, true
}

func (c *Cache) put(userID, key string, tasks []*models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.max {
		c.evictLocked()
	}
	c.entries[key] = cacheEntry{userID: userID, tasks: tasks, expiresAt: c.clock().Add(c.ttl)}
}

// InvalidateUser drops every cached entry belonging to a user. Callers
// must invoke it after a mutation and before returning to the caller.
func (c *Cache) InvalidateUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.userID == userID {
			delete(c.entries, k)
		}
	}
}

// evictLocked drops expired entries, then the soonest-to-expire entry if
// the cache is still full.
func (c *Cache) evictLocked() {
	now := c.clock()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.max {
		return
	}
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
		}
	}
	delete(c.entries, oldestKey)
}

// Cached wraps a Store with the read cache. List and Search go through
// the cache; every mutation invalidates the owning user's entries before
// returning, including mutations made inside a transaction.
type Cached struct {
	inner Store
	cache *Cache
}

func NewCached(inner Store, cache *Cache) *Cached {
	return &Cached{inner: inner, cache: cache}
}

func (c *Cached) List(ctx context.Context, userID string, f Filters, s Sort, p Page) ([]*models.Task, error) {
	key := fmt.Sprintf("list|%s|%s|%s|%s|%s|%v|%d|%d", userID, f.Status, f.Priority, f.Tag, s.Field, s.Desc, p.Offset, p.Limit)
	if tasks, ok := c.cache.get(key); ok {
		return tasks, nil
	}
	tasks, err := c.inner.List(ctx, userID, f, s, p)
	if err != nil {
		return nil, err
	}
	c.cache.put(userID, key, tasks)
	return tasks, nil
}

func (c *Cached) Search(ctx context.Context, userID, query string) ([]*models.Task, error) {
	key := fmt.Sprintf("search|%s|%s", userID, query)
	if tasks, ok := c.cache.get(key); ok {
		return tasks, nil
	}
	tasks, err := c.inner.Search(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	c.cache.put(userID, key, tasks)
	return tasks, nil
}

func (c *Cached) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	return c.inner.Get(ctx, userID, id)
}

func (c *Cached) Create(ctx context.Context, userID string, fields models.TaskFields) (*models.Task, error) {
	t, err := c.inner.Create(ctx, userID, fields)
	if err == nil {
		c.cache.InvalidateUser(userID)
	}
	return t, err
}

func (c *Cached) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	t, err := c.inner.Update(ctx, userID, id, patch)
	if err == nil {
		c.cache.InvalidateUser(userID)
	}
	return t, err
}

func (c *Cached) Delete(ctx context.Context, userID, id string) error {
	err := c.inner.Delete(ctx, userID, id)
	if err == nil {
		c.cache.InvalidateUser(userID)
	}
	return err
}

func (c *Cached) Complete(ctx context.Context, userID, id string) (*models.Task, error) {
	t, err := c.inner.Complete(ctx, userID, id)
	if err == nil {
		c.cache.InvalidateUser(userID)
	}
	return t, err
}

func (c *Cached) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &cachedTx{Tx: tx, cache: c.cache, touched: map[string]struct{}{}}, nil
}

// cachedTx tracks which users were mutated so their cache entries can be
// dropped when the transaction lands.
type cachedTx struct {
	Tx
	cache   *Cache
	touched map[string]struct{}
}

func (t *cachedTx) Create(ctx context.Context, userID string, fields models.TaskFields) (*models.Task, error) {
	task, err := t.Tx.Create(ctx, userID, fields)
	if err == nil {
		t.touched[userID] = struct{}{}
	}
	return task, err
}

func (t *cachedTx) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	task, err := t.Tx.Update(ctx, userID, id, patch)
	if err == nil {
		t.touched[userID] = struct{}{}
	}
	return task, err
}

func (t *cachedTx) Delete(ctx context.Context, userID, id string) error {
	err := t.Tx.Delete(ctx, userID, id)
	if err == nil {
		t.touched[userID] = struct{}{}
	}
	return err
}

func (t *cachedTx) Complete(ctx context.Context, userID, id string) (*models.Task, error) {
	task, err := t.Tx.Complete(ctx, userID, id)
	if err == nil {
		t.touched[userID] = struct{}{}
	}
	return task, err
}

func (t *cachedTx) Commit() error {
	err := t.Tx.Commit()
	if err == nil {
		for userID := range t.touched {
			t.cache.InvalidateUser(userID)
		}
	}
	return err
}
