package service

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// MutationQueue runs mutations and exports one at a time. Reads that do not
// need a consistent multi-table view bypass it.
type MutationQueue struct {
	sem *semaphore.Weighted
}

// NewMutationQueue creates an empty queue.
func NewMutationQueue() *MutationQueue {
	return &MutationQueue{sem: semaphore.NewWeighted(1)}
}

// Do waits for its turn and runs fn. It returns ctx's error if the context
// ends before fn could start.
func (q *MutationQueue) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := q.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer q.sem.Release(1)
	return fn(ctx)
}
