package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedisCollection stores the list as one JSON value under key.
func NewRedisCollection[T any](client redis.Cmdable, key string, idOf IDFunc[T]) Collection[T] {
	return &arrayCollection[T]{
		id: idOf,
		load: func(ctx context.Context) ([]T, error) {
			data, err := client.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return []T{}, nil
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", key, err)
			}

			var items []T
			if err := json.Unmarshal(data, &items); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", key, err)
			}
			return items, nil
		},
		save: func(ctx context.Context, items []T) error {
			if items == nil {
				items = []T{}
			}
			data, err := json.Marshal(items)
			if err != nil {
				return fmt.Errorf("failed to encode records: %w", err)
			}
			return client.Set(ctx, key, data, 0).Err()
		},
	}
}
