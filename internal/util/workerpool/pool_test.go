package workerpool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ExecutesTasks(t *testing.T) {
	p := New(&Config{Name: "test", MaxWorkers: 2, QueueSize: 8})
	defer p.Stop(time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)

	for _, id := range []string{"a", "b", "c"} {
		id := id
		wg.Add(1)
		require.NoError(t, p.Submit(context.Background(), Task{
			ID: id,
			Fn: func(context.Context) error {
				defer wg.Done()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
				return nil
			},
		}))
	}
	wg.Wait()

	assert.Len(t, seen, 3)
	assert.Equal(t, uint64(3), p.Completed())
	assert.Equal(t, uint64(0), p.Failed())
}

func TestPool_CountsFailures(t *testing.T) {
	p := New(&Config{Name: "test", MaxWorkers: 1, QueueSize: 8})
	defer p.Stop(time.Second)

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, p.Submit(context.Background(), Task{
		ID: "boom",
		Fn: func(context.Context) error {
			defer wg.Done()
			return errors.New("decode failed")
		},
	}))
	wg.Wait()

	assert.Eventually(t, func() bool { return p.Failed() == 1 }, time.Second, 5*time.Millisecond)
}

func TestPool_RecoversFromPanic(t *testing.T) {
	p := New(&Config{Name: "test", MaxWorkers: 1, QueueSize: 8})
	defer p.Stop(time.Second)

	require.NoError(t, p.Submit(context.Background(), Task{
		ID: "panic",
		Fn: func(context.Context) error { panic("bad payload") },
	}))

	// The worker survives and keeps serving
	done := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), Task{
		ID: "after",
		Fn: func(context.Context) error {
			close(done)
			return nil
		},
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not recover from panic")
	}
	assert.Eventually(t, func() bool { return p.Failed() == 1 }, time.Second, 5*time.Millisecond)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := New(&Config{Name: "test", MaxWorkers: 1, QueueSize: 8})
	require.NoError(t, p.Stop(time.Second))

	err := p.Submit(context.Background(), Task{ID: "late", Fn: func(context.Context) error { return nil }})
	assert.Error(t, err)
}

func TestPool_SubmitHonorsContext(t *testing.T) {
	p := New(&Config{Name: "test", MaxWorkers: 1, QueueSize: 1})
	defer p.Stop(time.Second)

	block := make(chan struct{})
	defer close(block)

	// Fill the single worker and the single queue slot
	started := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), Task{
		ID: "running",
		Fn: func(context.Context) error {
			close(started)
			<-block
			return nil
		},
	}))
	<-started
	require.NoError(t, p.Submit(context.Background(), Task{
		ID: "queued",
		Fn: func(context.Context) error { return nil },
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Submit(ctx, Task{ID: "blocked", Fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
