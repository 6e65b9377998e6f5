package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// NewFileCollection stores the list as an indented JSON array at path.
// A missing file reads as an empty list.
func NewFileCollection[T any](path string, idOf IDFunc[T]) (Collection[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &arrayCollection[T]{
		id: idOf,
		load: func(ctx context.Context) ([]T, error) {
			data, err := os.ReadFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				return []T{}, nil
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			if len(data) == 0 {
				return []T{}, nil
			}

			var items []T
			if err := json.Unmarshal(data, &items); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", path, err)
			}
			return items, nil
		},
		save: func(ctx context.Context, items []T) error {
			if items == nil {
				items = []T{}
			}
			data, err := json.MarshalIndent(items, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode records: %w", err)
			}

			tmp := path + ".tmp"
			if err := os.WriteFile(tmp, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", tmp, err)
			}
			if err := os.Rename(tmp, path); err != nil {
				return fmt.Errorf("failed to replace %s: %w", path, err)
			}
			return nil
		},
	}, nil
}
