package realtime

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"
)

// FirebaseStore backs Store with the Firebase Realtime Database.
type FirebaseStore struct {
	client *db.Client
}

func NewFirebaseStore(client *db.Client) *FirebaseStore {
	return &FirebaseStore{client: client}
}

func (s *FirebaseStore) Get(ctx context.Context, path string, v interface{}) error {
	if err := s.client.NewRef(path).Get(ctx, v); err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStore) Set(ctx context.Context, path string, v interface{}) error {
	if err := s.client.NewRef(path).Set(ctx, v); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStore) Push(ctx context.Context, path string, v interface{}) (string, error) {
	ref, err := s.client.NewRef(path).Push(ctx, v)
	if err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	return ref.Key, nil
}

func (s *FirebaseStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	if err := s.client.NewRef(path).Update(ctx, fields); err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStore) Delete(ctx context.Context, path string) error {
	if err := s.client.NewRef(path).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// Transaction runs fn with compare-and-set semantics on path. The database
// retries fn when the node changed concurrently.
func (s *FirebaseStore) Transaction(ctx context.Context, path string, fn UpdateFn) error {
	return s.client.NewRef(path).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		return fn(node)
	})
}
