// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package interfaces

import (
	"context"
	"sync"
)

// TxRunner runs fn as one unit of work. Repositories called with the ctx passed to fn
// take part in the same transaction when the backend supports it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TxFunc adapts a plain function to TxRunner.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// WithTransaction calls f.
func (f TxFunc) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// NoTransaction runs fn directly. Used by the in-memory backend and by deployments
// that cannot run multi-document transactions.
var NoTransaction TxRunner = TxFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})

// Serialized returns a runner that executes one fn at a time. The in-memory backend uses it
// so concurrent votes never interleave their ledger and counter writes.
func Serialized() TxRunner {
	var mu sync.Mutex
	return TxFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		mu.Lock()
		defer mu.Unlock()
		return fn(ctx)
	})
}
