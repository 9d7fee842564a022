package cache

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// FetchFunc loads the data for one key.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	status  Status
	data    any
	hasData bool
	err     error
	call    *call // in-flight fetch, nil when settled
}

type call struct {
	done chan struct{}
	data any
	err  error
}

// Snapshot is a point-in-time view of one entry.
type Snapshot struct {
	Key      Key
	Status   Status
	Data     any
	Err      error
	Fetching bool
}

// Client is the in-memory query cache. It is safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	entries map[Key]*entry
	log     *logrus.Logger
}

func NewClient(logger *logrus.Logger) *Client {
	return &Client{
		entries: make(map[Key]*entry),
		log:     logger,
	}
}

// Query returns the cached value for key, fetching it when nothing usable is cached.
// Callers asking for the same key while a fetch is in flight share that fetch.
// A settled error stays cached until Refetch. When enabled is false no request is made.
func (c *Client) Query(ctx context.Context, key Key, fetch FetchFunc, enabled bool) Snapshot {
	if !enabled {
		return c.Snapshot(key)
	}

	c.mu.Lock()
	e := c.entries[key]
	if e != nil && e.call == nil && (e.status == StatusSuccess || e.status == StatusError) {
		snap := e.snapshot(key)
		c.mu.Unlock()
		c.log.Debugf("Cache: Serving %s from cache (%s)", key, snap.Status)
		return snap
	}
	cl := c.startLocked(ctx, key, fetch, false)
	c.mu.Unlock()

	return c.wait(ctx, key, cl)
}

// Refetch always issues a new request for key, even if one is already in flight.
func (c *Client) Refetch(ctx context.Context, key Key, fetch FetchFunc) Snapshot {
	c.mu.Lock()
	cl := c.startLocked(ctx, key, fetch, true)
	c.mu.Unlock()

	return c.wait(ctx, key, cl)
}

// Snapshot reports the current state of key without fetching.
func (c *Client) Snapshot(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Snapshot{Key: key, Status: StatusIdle}
	}
	return e.snapshot(key)
}

// Update runs fn with exclusive access to every entry. Nothing fn does is visible to readers
// until fn returns.
func (c *Client) Update(fn func(tx *Tx)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&Tx{c: c})
}

// RemoveQueries evicts key. A fetch in flight for it settles without repopulating the cache.
func (c *Client) RemoveQueries(key Key) {
	c.Update(func(tx *Tx) { tx.Remove(key) })
}

func (c *Client) startLocked(ctx context.Context, key Key, fetch FetchFunc, force bool) *call {
	e := c.entries[key]
	if e == nil {
		e = &entry{}
		c.entries[key] = e
	}
	if e.call != nil && !force {
		c.log.Debugf("Cache: Joining in-flight fetch for %s", key)
		return e.call
	}

	cl := &call{done: make(chan struct{})}
	e.call = cl
	e.status = StatusLoading
	c.log.Debugf("Cache: Fetching %s", key)

	// The fetch outlives callers that stop waiting.
	go c.run(context.WithoutCancel(ctx), key, e, cl, fetch)
	return cl
}

func (c *Client) run(ctx context.Context, key Key, e *entry, cl *call, fetch FetchFunc) {
	data, err := fetch(ctx)
	cl.data, cl.err = data, err

	c.mu.Lock()
	if c.entries[key] == e {
		if err != nil {
			e.err = err
		} else {
			e.data, e.hasData, e.err = data, true, nil
		}
		// A newer fetch still in flight keeps the entry loading.
		if e.call == cl || e.call == nil {
			e.call = nil
			if err != nil {
				e.status = StatusError
			} else {
				e.status = StatusSuccess
			}
		}
	} else {
		c.log.Debugf("Cache: Dropping result for evicted key %s", key)
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warnf("Cache: Fetch for %s failed: %v", key, err)
	}
	close(cl.done)
}

func (c *Client) wait(ctx context.Context, key Key, cl *call) Snapshot {
	select {
	case <-cl.done:
		if cl.err != nil {
			return Snapshot{Key: key, Status: StatusError, Err: cl.err}
		}
		return Snapshot{Key: key, Status: StatusSuccess, Data: cl.data}
	case <-ctx.Done():
		return Snapshot{Key: key, Status: StatusLoading, Err: ctx.Err(), Fetching: true}
	}
}

func (e *entry) snapshot(key Key) Snapshot {
	return Snapshot{
		Key:      key,
		Status:   e.status,
		Data:     e.data,
		Err:      e.err,
		Fetching: e.call != nil,
	}
}

// Tx is the view of the cache handed to Update callbacks.
type Tx struct {
	c *Client
}

// Get returns the data stored for key, if any.
func (tx *Tx) Get(key Key) (any, bool) {
	e, ok := tx.c.entries[key]
	if !ok || !e.hasData {
		return nil, false
	}
	return e.data, true
}

// Set stores data for key and marks it successful, creating the entry when absent.
func (tx *Tx) Set(key Key, data any) {
	e, ok := tx.c.entries[key]
	if !ok {
		e = &entry{}
		tx.c.entries[key] = e
	}
	e.data, e.hasData, e.err = data, true, nil
	if e.call == nil {
		e.status = StatusSuccess
	}
}

func (tx *Tx) Remove(key Key) {
	delete(tx.c.entries, key)
}
