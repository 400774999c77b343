// ABOUTME: Bounded background task queue for fire-and-forget persistence
// ABOUTME: Drops work with a warning when full so the chat path never blocks

package asyncwriter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is a unit of background work. The context carries the writer's
// per-task deadline; tasks must respect it.
type Task func(ctx context.Context)

// taskTimeout bounds how long one task may run before its context is
// cancelled. Persistence writes that take longer than this are hung.
const taskTimeout = 30 * time.Second

// Writer runs submitted tasks on a single background goroutine. The
// queue is bounded; when it is full, Submit drops the task and logs a
// warning instead of blocking. Panics inside tasks are recovered and
// logged so a bad write never takes the consumer down.
type Writer struct {
	queue  chan queuedTask
	logger *slog.Logger

	// mu guards closed so no Submit can be mid-send when Close closes
	// the queue channel.
	mu     sync.Mutex
	closed bool

	closeOnce sync.Once
	done      chan struct{}
}

type queuedTask struct {
	name string
	run  Task
}

// New creates a writer with the given queue capacity and starts its
// consumer goroutine.
func New(queueSize int) *Writer {
	if queueSize <= 0 {
		queueSize = 1
	}
	w := &Writer{
		queue:  make(chan queuedTask, queueSize),
		logger: slog.Default().With("component", "asyncwriter"),
		done:   make(chan struct{}),
	}
	go w.consume()
	return w
}

// Submit enqueues a task and returns immediately. It reports whether
// the task was accepted; false means the task was dropped because the
// queue was full or the writer is already closed. Submitting after
// Close is safe: a request finishing mid-shutdown gets a logged drop,
// never a panic.
func (w *Writer) Submit(name string, task Task) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.logger.Warn("writer closed, dropping task", "task", name)
		return false
	}

	select {
	case w.queue <- queuedTask{name: name, run: task}:
		return true
	default:
		w.logger.Warn("background write queue full, dropping task",
			"task", name,
			"capacity", cap(w.queue))
		return false
	}
}

func (w *Writer) consume() {
	defer close(w.done)
	for qt := range w.queue {
		w.runOne(qt)
	}
}

func (w *Writer) runOne(qt queuedTask) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("background task panicked",
				"task", qt.name,
				"panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()
	qt.run(ctx)
}

// Close stops accepting tasks, drains the queue, and waits for the
// consumer to finish the remaining work.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.queue)
		w.mu.Unlock()
	})
	<-w.done
}
