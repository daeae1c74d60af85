// Package turnqueue implements the Turn Serializer (spec §4.4): a
// per-session FIFO of deferred generation tasks, guaranteeing that no two
// LLM invocations on the same conversation history overlap.
package turnqueue

import (
	"log"
	"sync"
)

// Queue runs submitted tasks strictly in submission order on a single
// background goroutine. If a task panics, the queue recovers, logs, and
// continues — the queue is a safety net, not a propagation path (spec §4.4).
type Queue struct {
	tasks chan func()
	once  sync.Once
	done  chan struct{}
}

// New starts the queue's worker goroutine.
func New() *Queue {
	q := &Queue{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for task := range q.tasks {
		q.runOne(task)
	}
	close(q.done)
}

func (q *Queue) runOne(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("turnqueue: task panicked: %v", r)
		}
	}()
	task()
}

// Enqueue appends task to the FIFO. Enqueue never blocks the caller beyond
// the queue's backlog capacity; tasks run one at a time, in submission
// order.
func (q *Queue) Enqueue(task func()) {
	q.tasks <- task
}

// Close stops accepting new tasks and waits for the currently running and
// already-queued tasks to drain (spec §4.5.1 "Close").
func (q *Queue) Close() {
	q.once.Do(func() { close(q.tasks) })
	<-q.done
}
