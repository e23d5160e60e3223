package application

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueServesWaitersInSubmissionOrder(t *testing.T) {
	t.Parallel()

	q := newAccessQueue()

	// hold the head so every later ticket queues behind it
	holder := q.acquire()

	const n = 8
	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := q.acquire()
			defer release()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}()
		// wait until the goroutine has enqueued before starting the next,
		// so submission order is deterministic
		require.Eventually(t, func() bool {
			return q.depth() == i+2
		}, time.Second, time.Millisecond)
	}

	holder()
	wg.Wait()

	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, order)
}

func TestQueueEnqueueClaimsPositionBeforeWait(t *testing.T) {
	t.Parallel()

	q := newAccessQueue()
	holder := q.acquire()

	// the position is claimed at enqueue time, even though nothing is
	// waiting on the ticket yet
	first := q.enqueue()

	var (
		mu    sync.Mutex
		order []string
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		release := q.acquire()
		defer release()
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	}()
	require.Eventually(t, func() bool {
		return q.depth() == 3
	}, time.Second, time.Millisecond)

	holder()

	release := q.wait(first)
	mu.Lock()
	order = append(order, "first")
	mu.Unlock()
	release()
	<-done

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestQueueReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	q := newAccessQueue()
	release := q.acquire()
	release()
	release()

	assert.Zero(t, q.depth())

	// the queue is still usable
	release = q.acquire()
	release()
}

func TestQueueBlocksUntilHeadReleases(t *testing.T) {
	t.Parallel()

	q := newAccessQueue()
	holder := q.acquire()

	acquired := make(chan struct{})
	go func() {
		release := q.acquire()
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire returned while head was held")
	case <-time.After(50 * time.Millisecond):
	}

	holder()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire never returned after release")
	}
}
