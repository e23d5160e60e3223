package application

import "sync"

// accessQueue serializes all I/O against one session's history file. It is
// a FIFO ticket queue instead of a plain mutex so waiters are serviced in
// exact submission order. The two phases are split: enqueue claims the
// position and must happen on the submitting control flow; wait may then
// run on a worker goroutine.
type accessQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	waiters []*ticket
}

type ticket struct{}

func newAccessQueue() *accessQueue {
	q := &accessQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// enqueue appends a ticket at the tail. Every enqueued ticket must be
// passed to wait and its release run eventually, or the queue blocks
// forever.
func (q *accessQueue) enqueue() *ticket {
	t := &ticket{}
	q.mu.Lock()
	q.waiters = append(q.waiters, t)
	q.mu.Unlock()
	return t
}

// wait blocks until t is at the head of the queue and returns the release
// function. Callers must arrange for release to run on every exit path
// (defer it immediately). Releasing twice is a no-op.
func (q *accessQueue) wait(t *ticket) (release func()) {
	q.mu.Lock()
	for q.waiters[0] != t {
		q.cond.Wait()
	}
	q.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			q.mu.Lock()
			q.waiters = q.waiters[1:]
			q.mu.Unlock()
			q.cond.Broadcast()
		})
	}
}

// acquire is enqueue and wait in one step, for callers that stay on their
// own control flow.
func (q *accessQueue) acquire() (release func()) {
	return q.wait(q.enqueue())
}

func (q *accessQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}
