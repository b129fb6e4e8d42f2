package module

import (
	"context"
	"sync"

	"github.com/vk/mapboot/internal/appstate"
)

// Task is a unit of startup work queued by a module during Init. It
// receives the resolved initial state.
type Task func(ctx context.Context, initial appstate.State) error

// Barrier collects the startup tasks that must complete before the
// first state apply. It replaces the mutable promise list the old init
// event carried.
type Barrier struct {
	mu    sync.Mutex
	tasks []Task
}

// NewBarrier creates an empty Barrier.
func NewBarrier() *Barrier {
	return &Barrier{}
}

// Go queues a task.
func (b *Barrier) Go(t Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, t)
}

// Len reports the number of queued tasks.
func (b *Barrier) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}

// Wait runs every queued task concurrently and blocks until all have
// finished. The first error is returned. There is no cancellation of
// sibling tasks: every task runs to completion or failure.
func (b *Barrier) Wait(ctx context.Context, initial appstate.State) error {
	b.mu.Lock()
	tasks := make([]Task, len(b.tasks))
	copy(tasks, b.tasks)
	b.mu.Unlock()

	if len(tasks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(tasks))
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()
			errs[i] = t(ctx, initial.Clone())
		}(i, t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
