package runner

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type task struct {
	fn   func()
	done chan struct{}
}

// queue runs submitted tasks one at a time, in submission order, on a single worker.
type queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []task
	closed  bool
	stopped chan struct{}
}

func newQueue() *queue {
	q := &queue{stopped: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.work()
	return q
}

// push enqueues fn and returns a channel closed once fn has returned.
func (q *queue) push(fn func()) <-chan struct{} {
	t := task{fn: fn, done: make(chan struct{})}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		log.Warn().Msg("action queue closed; dropping task")
		close(t.done)
		return t.done
	}
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
	q.cond.Signal()
	return t.done
}

func (q *queue) work() {
	defer close(q.stopped)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		t := q.tasks[0]
		q.tasks[0] = task{}
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		runTask(t)
	}
}

// runTask keeps the worker alive when a task panics.
func runTask(t task) {
	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("action failed")
		}
	}()
	t.fn()
}

// close stops accepting work and waits until queued tasks have drained.
func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
	<-q.stopped
}
