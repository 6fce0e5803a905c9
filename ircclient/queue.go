package ircclient

import "sync"

// OutboundQueue is an unbounded FIFO of command lines with a single consumer.
//
// Enqueue never blocks. Pop blocks on a condition variable until a command
// is available or the queue has been closed and drained.
type OutboundQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []string
	closed bool
}

// NewOutboundQueue creates an empty open queue.
func NewOutboundQueue() *OutboundQueue {
	q := &OutboundQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a command to the tail.
func (q *OutboundQueue) Enqueue(text string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, text)
	q.cond.Signal()
	return nil
}

// Pop removes the head command. It returns false once the queue is closed
// and every command queued before Close has been handed out.
func (q *OutboundQueue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return "", false
	}
	text := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	return text, true
}

// Close stops accepting commands and wakes the consumer.
func (q *OutboundQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of pending commands.
func (q *OutboundQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
