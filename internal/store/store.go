// Package store persists ordered record lists. Every backend keeps the whole
// list as a single JSON array and rewrites it on each mutation.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no record matches the requested id.
var ErrNotFound = errors.New("record not found")

// Collection is an ordered list of records addressed by id.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Append(ctx context.Context, item T) error
	Update(ctx context.Context, id string, fn func(*T) error) (T, error)
	Remove(ctx context.Context, id string) error
}

// IDFunc extracts the id of a record.
type IDFunc[T any] func(T) string

type loadFunc[T any] func(ctx context.Context) ([]T, error)
type saveFunc[T any] func(ctx context.Context, items []T) error

// arrayCollection implements read-modify-write of the whole array on top of
// a backend-specific load and save. The mutex serializes writers within one
// process only.
type arrayCollection[T any] struct {
	mu   sync.Mutex
	id   IDFunc[T]
	load loadFunc[T]
	save saveFunc[T]
}

func (c *arrayCollection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *arrayCollection[T]) Append(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	return c.save(ctx, append(items, item))
}

func (c *arrayCollection[T]) Update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	items, err := c.load(ctx)
	if err != nil {
		return zero, err
	}

	for i := range items {
		if c.id(items[i]) != id {
			continue
		}
		updated := items[i]
		if err := fn(&updated); err != nil {
			return zero, err
		}
		items[i] = updated
		if err := c.save(ctx, items); err != nil {
			return zero, err
		}
		return updated, nil
	}

	return zero, ErrNotFound
}

func (c *arrayCollection[T]) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, item := range items {
		if c.id(item) != id {
			kept = append(kept, item)
		}
	}
	return c.save(ctx, kept)
}

// Find returns the record with the given id.
func Find[T any](ctx context.Context, c Collection[T], id string, idOf IDFunc[T]) (T, error) {
	var zero T
	items, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if idOf(item) == id {
			return item, nil
		}
	}
	return zero, ErrNotFound
}
