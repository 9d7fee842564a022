package cache

import "context"

// Result is a typed Snapshot.
type Result[T any] struct {
	Data   T
	Status Status
	Err    error
}

func (r Result[T]) IsSuccess() bool { return r.Status == StatusSuccess }

func (r Result[T]) IsError() bool { return r.Status == StatusError }

func Query[T any](ctx context.Context, c *Client, key Key, fetch func(context.Context) (T, error), enabled bool) Result[T] {
	return typed[T](c.Query(ctx, key, erase(fetch), enabled))
}

func Refetch[T any](ctx context.Context, c *Client, key Key, fetch func(context.Context) (T, error)) Result[T] {
	return typed[T](c.Refetch(ctx, key, erase(fetch)))
}

// GetQueryData returns the cached data for key when it holds a T.
func GetQueryData[T any](c *Client, key Key) (T, bool) {
	var out T
	var ok bool
	c.Update(func(tx *Tx) { out, ok = TxGet[T](tx, key) })
	return out, ok
}

// SetQueryData replaces the data for key with fn(old). Returning false from fn leaves the entry alone.
func SetQueryData[T any](c *Client, key Key, fn func(old T, ok bool) (T, bool)) {
	c.Update(func(tx *Tx) { TxPatch(tx, key, fn) })
}

func TxGet[T any](tx *Tx, key Key) (T, bool) {
	v, ok := tx.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func TxPatch[T any](tx *Tx, key Key, fn func(old T, ok bool) (T, bool)) {
	old, ok := TxGet[T](tx, key)
	if next, write := fn(old, ok); write {
		tx.Set(key, next)
	}
}

func erase[T any](fetch func(context.Context) (T, error)) FetchFunc {
	return func(ctx context.Context) (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func typed[T any](s Snapshot) Result[T] {
	r := Result[T]{Status: s.Status, Err: s.Err}
	if v, ok := s.Data.(T); ok {
		r.Data = v
	}
	return r
}
