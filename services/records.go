package services

import (
	"context"
	"fmt"

	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/records"
)

// loadNewest reads a keyed record collection, newest first.
func loadNewest[T records.Record](ctx context.Context, store realtime.Store, path string) ([]T, error) {
	var m map[string]T
	if err := store.Get(ctx, path, &m); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return records.NewestFirst(m), nil
}

// appendRecord pushes r under path and stamps it with the generated key.
func appendRecord(ctx context.Context, store realtime.Store, path string, r records.Record) error {
	key, err := store.Push(ctx, path, r)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", r.Category(), err)
	}
	r.SetKey(key)
	return nil
}
