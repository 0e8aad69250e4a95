// Package optimistic applies a local change before it is persisted and
// reverts it exactly when the store rejects it.
package optimistic

import (
	"context"
	"errors"
	"fmt"
)

var ErrPersistenceFailure = errors.New("optimistic: persistence failure")

// Mutation describes one optimistic change. Apply and Revert mutate local
// state and must be inverses of each other. Reconcile receives the stored
// value (server-assigned fields included) after a successful Persist.
type Mutation[T any] struct {
	Apply     func()
	Revert    func()
	Persist   func(ctx context.Context) (T, error)
	Reconcile func(T)
}

// Run applies m, persists it and either reconciles or reverts. Persistence
// errors are wrapped with ErrPersistenceFailure and keep the store's error in
// the chain.
func Run[T any](ctx context.Context, m Mutation[T]) (T, error) {
	var zero T
	if m.Persist == nil {
		return zero, errors.New("optimistic: mutation has no persist step")
	}
	if m.Apply != nil {
		m.Apply()
	}
	out, err := m.Persist(ctx)
	if err != nil {
		if m.Revert != nil {
			m.Revert()
		}
		return zero, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	if m.Reconcile != nil {
		m.Reconcile(out)
	}
	return out, nil
}

// Value runs a mutation that replaces a single value held behind get/set,
// restoring the captured previous value on failure.
func Value[T any](ctx context.Context, get func() T, set func(T), next T, persist func(ctx context.Context) (T, error)) (T, error) {
	prev := get()
	return Run(ctx, Mutation[T]{
		Apply:     func() { set(next) },
		Revert:    func() { set(prev) },
		Persist:   persist,
		Reconcile: set,
	})
}
