// ABOUTME: Tests for the bounded background writer
// ABOUTME: Covers execution order, full-queue drops, panic recovery, and Close draining

package asyncwriter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_RunsTask(t *testing.T) {
	w := New(4)
	defer w.Close()

	done := make(chan struct{})
	ok := w.Submit("test", func(ctx context.Context) {
		close(done)
	})
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestSubmit_DoesNotBlockCaller(t *testing.T) {
	w := New(1)
	defer w.Close()

	block := make(chan struct{})
	w.Submit("blocker", func(ctx context.Context) {
		<-block
	})

	start := time.Now()
	w.Submit("queued", func(ctx context.Context) {})
	w.Submit("dropped", func(ctx context.Context) {})
	assert.Less(t, time.Since(start), 200*time.Millisecond)

	close(block)
}

func TestSubmit_DropsWhenFull(t *testing.T) {
	w := New(1)

	block := make(chan struct{})
	require.True(t, w.Submit("blocker", func(ctx context.Context) {
		<-block
	}))

	// Give the consumer time to pick up the blocker so the queue slot
	// frees deterministically.
	time.Sleep(50 * time.Millisecond)

	require.True(t, w.Submit("fills-queue", func(ctx context.Context) {}))
	assert.False(t, w.Submit("overflow", func(ctx context.Context) {}))

	close(block)
	w.Close()
}

func TestRunOne_RecoversPanic(t *testing.T) {
	w := New(4)

	var ran atomic.Bool
	w.Submit("panics", func(ctx context.Context) {
		panic("boom")
	})
	w.Submit("survives", func(ctx context.Context) {
		ran.Store(true)
	})

	w.Close()
	assert.True(t, ran.Load(), "consumer should survive a panicking task")
}

func TestClose_DrainsQueue(t *testing.T) {
	w := New(16)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		require.True(t, w.Submit("ordered", func(ctx context.Context) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}

	w.Close()

	require.Len(t, order, 10)
	for i, v := range order {
		assert.Equal(t, i, v, "tasks should run in submission order")
	}
}

func TestClose_Idempotent(t *testing.T) {
	w := New(4)
	w.Close()
	assert.NotPanics(t, func() { w.Close() })
}

func TestSubmit_AfterCloseDropsWithoutPanic(t *testing.T) {
	w := New(4)
	w.Close()

	var ran atomic.Bool
	var ok bool
	assert.NotPanics(t, func() {
		ok = w.Submit("late", func(ctx context.Context) {
			ran.Store(true)
		})
	})
	assert.False(t, ok)
	assert.False(t, ran.Load())
}

func TestSubmit_DuringCloseNeverPanics(t *testing.T) {
	for i := 0; i < 50; i++ {
		w := New(1)

		done := make(chan struct{})
		go func() {
			defer close(done)
			assert.NotPanics(t, func() {
				w.Submit("racing", func(ctx context.Context) {})
			})
		}()
		w.Close()
		<-done
	}
}

func TestTaskContext_HasDeadline(t *testing.T) {
	w := New(4)

	var hasDeadline atomic.Bool
	w.Submit("deadline", func(ctx context.Context) {
		_, ok := ctx.Deadline()
		hasDeadline.Store(ok)
	})

	w.Close()
	assert.True(t, hasDeadline.Load())
}
