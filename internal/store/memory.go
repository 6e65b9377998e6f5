package store

import (
	"context"
	"encoding/json"
)

// NewMemoryCollection keeps the list in process memory. Records are copied
// through JSON on every load and save so callers never share state with the
// store, matching the file and redis backends.
func NewMemoryCollection[T any](idOf IDFunc[T]) Collection[T] {
	var data []byte

	return &arrayCollection[T]{
		id: idOf,
		load: func(ctx context.Context) ([]T, error) {
			items := []T{}
			if data == nil {
				return items, nil
			}
			if err := json.Unmarshal(data, &items); err != nil {
				return nil, err
			}
			return items, nil
		},
		save: func(ctx context.Context, items []T) error {
			encoded, err := json.Marshal(items)
			if err != nil {
				return err
			}
			data = encoded
			return nil
		},
	}
}
