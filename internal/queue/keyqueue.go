// Package queue provides a per-key serialized task queue: at most one
// in-flight task per key, strict submission order per key, independent
// keys running concurrently. Edit operations are queued per entity
// identifier so concurrent user actions on the same item apply in
// submission order instead of racing.
package queue

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task is one queued unit of work
type Task func(ctx context.Context) error

type keyWorker struct {
	tasks chan queuedTask
}

type queuedTask struct {
	id  string
	fn  Task
	ctx context.Context
}

// KeyQueue serializes tasks per key
type KeyQueue struct {
	mu        sync.Mutex
	workers   map[string]*keyWorker
	wg        sync.WaitGroup
	logger    *zap.Logger
	queueSize int
	closed    bool
}

// NewKeyQueue creates a key queue. queueSize bounds the backlog per key.
func NewKeyQueue(queueSize int, logger *zap.Logger) *KeyQueue {
	if queueSize <= 0 {
		queueSize = 32
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyQueue{
		workers:   make(map[string]*keyWorker),
		logger:    logger,
		queueSize: queueSize,
	}
}

// Submit enqueues a task for a key. Tasks for the same key execute
// strictly in submission order; the call blocks only when the key's
// backlog is full.
func (q *KeyQueue) Submit(ctx context.Context, key string, task Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return context.Canceled
	}
	w, ok := q.workers[key]
	if !ok {
		w = &keyWorker{tasks: make(chan queuedTask, q.queueSize)}
		q.workers[key] = w
		q.wg.Add(1)
		go q.runWorker(key, w)
	}
	q.mu.Unlock()

	qt := queuedTask{id: uuid.NewString(), fn: task, ctx: ctx}
	select {
	case w.tasks <- qt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *KeyQueue) runWorker(key string, w *keyWorker) {
	defer q.wg.Done()

	for qt := range w.tasks {
		if err := qt.ctx.Err(); err != nil {
			// Abandoned before its turn came.
			continue
		}
		if err := qt.fn(qt.ctx); err != nil {
			q.logger.Warn("Serialized task failed",
				zap.String("key", key),
				zap.String("task_id", qt.id),
				zap.Error(err))
		}
	}
}

// Close drains every key's backlog and waits for in-flight tasks
func (q *KeyQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for _, w := range q.workers {
		close(w.tasks)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
