package realtime

import "context"

// ChangeFunc is called after a successful write to path.
type ChangeFunc func(ctx context.Context, path string)

// Watched wraps a Store and reports every successful write, which is how
// live subscribers learn that a collection changed.
type Watched struct {
	Store
	onChange ChangeFunc
}

func NewWatched(store Store, onChange ChangeFunc) *Watched {
	return &Watched{Store: store, onChange: onChange}
}

func (w *Watched) Set(ctx context.Context, path string, v interface{}) error {
	if err := w.Store.Set(ctx, path, v); err != nil {
		return err
	}
	w.onChange(ctx, path)
	return nil
}

func (w *Watched) Push(ctx context.Context, path string, v interface{}) (string, error) {
	key, err := w.Store.Push(ctx, path, v)
	if err != nil {
		return "", err
	}
	w.onChange(ctx, path+"/"+key)
	return key, nil
}

func (w *Watched) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	if err := w.Store.Update(ctx, path, fields); err != nil {
		return err
	}
	w.onChange(ctx, path)
	return nil
}

func (w *Watched) Delete(ctx context.Context, path string) error {
	if err := w.Store.Delete(ctx, path); err != nil {
		return err
	}
	w.onChange(ctx, path)
	return nil
}

func (w *Watched) Transaction(ctx context.Context, path string, fn UpdateFn) error {
	if err := w.Store.Transaction(ctx, path, fn); err != nil {
		return err
	}
	w.onChange(ctx, path)
	return nil
}
