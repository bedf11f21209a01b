package main

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errQueueStopped = errors.New("dispatch queue stopped")

// job is one unit of device traffic. done is nil for fire and forget jobs.
type job struct {
	name string
	fn   func(ctx context.Context) error
	done chan error
}

// dispatchQueue runs device writes one at a time in the order they were queued, so a
// chunked upload is never interleaved with another dispatch.
type dispatchQueue struct {
	jobs chan job

	// stopped is closed once the watcher has returned.
	stopped chan struct{}
	stop    sync.Once

	lock    sync.Mutex
	pending map[string]*time.Timer
}

func newDispatchQueue() *dispatchQueue {
	return &dispatchQueue{
		jobs:    make(chan job, 64),
		stopped: make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}
}

// queueWatcher executes jobs until ctx is done. Jobs run with ctx, not with the context
// of whoever queued them: a started dispatch is not cut short by an impatient caller.
func (q *dispatchQueue) queueWatcher(ctx context.Context) {
	defer q.stop.Do(func() { close(q.stopped) })

	for {
		select {
		case <-ctx.Done():
			q.stopPending()
			return
		case j := <-q.jobs:
			start := time.Now()
			err := j.fn(ctx)
			logger.Debugw("dispatched to device",
				"job", j.name,
				"took", time.Since(start),
				"err", err)

			if j.done != nil {
				j.done <- err
			} else if err != nil {
				logger.Warnw("background dispatch failed",
					"job", j.name,
					"err", err)
			}
		}
	}
}

// do queues fn and waits for its result.
func (q *dispatchQueue) do(ctx context.Context, name string, fn func(context.Context) error) error {
	done := make(chan error, 1)

	select {
	case q.jobs <- job{name: name, fn: fn, done: done}:
	case <-q.stopped:
		return errQueueStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-q.stopped:
		select {
		case err := <-done:
			return err
		default:
			return errQueueStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue queues a fire and forget job. It reports false when the watcher has stopped.
func (q *dispatchQueue) enqueue(j job) bool {
	select {
	case q.jobs <- j:
		return true
	case <-q.stopped:
		logger.Debugw("dropped job after shutdown",
			"job", j.name)
		return false
	}
}

// later queues fn once name has been quiet for d. Every call for the same name restarts
// the wait and replaces fn.
func (q *dispatchQueue) later(name string, d time.Duration, fn func(context.Context) error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if t, ok := q.pending[name]; ok {
		t.Stop()
	}

	q.pending[name] = time.AfterFunc(d, func() {
		q.lock.Lock()
		delete(q.pending, name)
		q.lock.Unlock()

		q.enqueue(job{name: name, fn: fn})
	})
}

func (q *dispatchQueue) stopPending() {
	q.lock.Lock()
	defer q.lock.Unlock()

	for name, t := range q.pending {
		t.Stop()
		delete(q.pending, name)
	}
}
