package cache

import (
	"context"
	"sync"
)

// Mutation is a write whose success is reconciled into the cache.
type Mutation[V any, R any] struct {
	client    *Client
	fn        func(ctx context.Context, vars V) (R, error)
	onSuccess func(tx *Tx, result R, vars V)
	after     func(ctx context.Context, result R, vars V)

	mu      sync.Mutex
	pending int
	err     error
}

// NewMutation wires fn to c. onSuccess runs inside one Update so the reconciliation is
// never half-visible; it may be nil.
func NewMutation[V any, R any](c *Client, fn func(ctx context.Context, vars V) (R, error), onSuccess func(tx *Tx, result R, vars V)) *Mutation[V, R] {
	return &Mutation[V, R]{client: c, fn: fn, onSuccess: onSuccess}
}

// After registers fn to run once a successful reconciliation is visible, outside the cache lock.
func (m *Mutation[V, R]) After(fn func(ctx context.Context, result R, vars V)) *Mutation[V, R] {
	m.after = fn
	return m
}

// Mutate runs the call to completion even if ctx is cancelled, so a confirmed write is
// always reconciled. On failure the cache is left untouched and the error returned.
func (m *Mutation[V, R]) Mutate(ctx context.Context, vars V) (R, error) {
	m.mu.Lock()
	m.pending++
	m.err = nil
	m.mu.Unlock()

	result, err := m.fn(context.WithoutCancel(ctx), vars)
	if err == nil && m.onSuccess != nil {
		m.client.Update(func(tx *Tx) { m.onSuccess(tx, result, vars) })
	}

	if err == nil && m.after != nil {
		m.after(context.WithoutCancel(ctx), result, vars)
	}

	m.mu.Lock()
	m.pending--
	m.err = err
	m.mu.Unlock()
	return result, err
}

func (m *Mutation[V, R]) IsPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending > 0
}

// Err is the error of the last settled Mutate, nil after a success.
func (m *Mutation[V, R]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}
