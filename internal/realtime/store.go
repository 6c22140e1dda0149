// Package realtime is the path-addressed document store the service persists
// into: users/{uid}/... and pendingPayments/{uid}.
package realtime

import (
	"context"
	"errors"
)

// ErrAborted can be returned from an UpdateFn to abandon a transaction
// without writing.
var ErrAborted = errors.New("transaction aborted")

// TxNode is the current value of a node inside a transaction.
type TxNode interface {
	Unmarshal(v interface{}) error
}

// UpdateFn receives the current value and returns the value to store.
// Returning an error aborts the transaction and the error is passed back to
// the caller of Transaction unchanged.
type UpdateFn func(TxNode) (interface{}, error)

// Store is the subset of the Realtime Database the service relies on. There
// are no transactions across paths.
type Store interface {
	// Get decodes the value at path into v. A missing node decodes as JSON null.
	Get(ctx context.Context, path string, v interface{}) error
	Set(ctx context.Context, path string, v interface{}) error
	// Push appends v under a generated, order-preserving key and returns the key.
	Push(ctx context.Context, path string, v interface{}) (string, error)
	Update(ctx context.Context, path string, fields map[string]interface{}) error
	Delete(ctx context.Context, path string) error
	Transaction(ctx context.Context, path string, fn UpdateFn) error
}
