package reactor

import (
	"container/heap"
	"sync/atomic"
	"time"
)

// Call is a callback scheduled to run on the Loop goroutine, either as
// soon as possible or at a deadline. Cancellation is cooperative: Cancel
// only flips a flag; the call stays queued until its turn, at which point
// the loop skips it.
type Call struct {
	deadline  time.Time
	seq       uint64
	cancelled atomic.Bool
	fn        func(*Loop)
}

// Cancel marks the call so it will not fire. It is safe to call from any
// goroutine, including after the call has already run.
func (c *Call) Cancel() {
	c.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (c *Call) Cancelled() bool {
	return c.cancelled.Load()
}

// callHeap is a container/heap min-heap of *Call ordered by deadline,
// ties broken by insertion order (seq) so same-deadline calls fire FIFO.
type callHeap []*Call

func (h callHeap) Len() int { return len(h) }

func (h callHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h callHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *callHeap) Push(x interface{}) {
	*h = append(*h, x.(*Call))
}

func (h *callHeap) Pop() interface{} {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return c
}

var _ heap.Interface = (*callHeap)(nil)
