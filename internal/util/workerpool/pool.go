// Package workerpool provides the bounded goroutine pool the sync
// worker uses to decode and enrich entity payloads in parallel while
// keeping its outbound message channel strictly ordered.
package workerpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task represents one unit of decode work
type Task struct {
	ID      string
	Fn      func(context.Context) error
	Context context.Context
}

// Pool manages a bounded set of goroutines executing tasks
type Pool struct {
	name           string
	maxWorkers     int
	taskQueue      chan Task
	logger         *zap.Logger
	wg             sync.WaitGroup
	stopOnce       sync.Once
	stopChan       chan struct{}
	completedTasks uint64
	failedTasks    uint64
}

// Config holds worker pool configuration
type Config struct {
	Name       string
	MaxWorkers int
	QueueSize  int
	Logger     *zap.Logger
}

// New creates a worker pool and starts its workers
func New(cfg *Config) *Pool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	p := &Pool{
		name:       cfg.Name,
		maxWorkers: cfg.MaxWorkers,
		taskQueue:  make(chan Task, cfg.QueueSize),
		logger:     cfg.Logger,
		stopChan:   make(chan struct{}),
	}

	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Debug("Worker pool started",
		zap.String("name", p.name),
		zap.Int("max_workers", p.maxWorkers))

	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case task := <-p.taskQueue:
			if err := p.safeExecute(task); err != nil {
				atomic.AddUint64(&p.failedTasks, 1)
				p.logger.Error("Task failed",
					zap.String("pool", p.name),
					zap.Int("worker_id", id),
					zap.String("task_id", task.ID),
					zap.Error(err))
			} else {
				atomic.AddUint64(&p.completedTasks, 1)
			}
		}
	}
}

func (p *Pool) safeExecute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	if task.Context == nil {
		task.Context = context.Background()
	}
	return task.Fn(task.Context)
}

// Submit submits a task, blocking until accepted or the context ends
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-p.stopChan:
		return fmt.Errorf("worker pool %q is stopped", p.name)
	default:
	}
	select {
	case <-p.stopChan:
		return fmt.Errorf("worker pool %q is stopped", p.name)
	case <-ctx.Done():
		return ctx.Err()
	case p.taskQueue <- task:
		return nil
	}
}

// Stop gracefully stops the pool, waiting up to timeout for workers to
// finish their current tasks.
func (p *Pool) Stop(timeout time.Duration) error {
	var err error
	p.stopOnce.Do(func() {
		close(p.stopChan)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			err = fmt.Errorf("worker pool %q stop timeout after %v", p.name, timeout)
		}
	})
	return err
}

// Completed returns the number of successfully executed tasks
func (p *Pool) Completed() uint64 {
	return atomic.LoadUint64(&p.completedTasks)
}

// Failed returns the number of failed tasks
func (p *Pool) Failed() uint64 {
	return atomic.LoadUint64(&p.failedTasks)
}
