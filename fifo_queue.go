// fifo_queue.go
package workerpool

const (
	initialFifoCapacity = 64
)

// fifoQueue is a growable first-in–first-out ring of control messages.
//
// It is not safe for concurrent use; the channel guards it with its own mutex.
// Messages leave in the order they were pushed. The ring doubles when full,
// so Push never fails and never drops.
type fifoQueue struct {
	buf        []controlMessage // circular buffer
	head, tail int              // read/write indices
	size       int              // number of messages currently buffered
	capacity   int
}

// newFifoQueue creates a FIFO ring with the given initial capacity.
func newFifoQueue(cap int) *fifoQueue {
	if cap <= 0 {
		cap = initialFifoCapacity
	}
	return &fifoQueue{
		buf:      make([]controlMessage, cap),
		capacity: cap,
	}
}

// Len returns the number of messages currently waiting in the queue.
func (q *fifoQueue) Len() int { return q.size }

// Push appends a message at the tail, growing the ring if it is full.
func (q *fifoQueue) Push(m controlMessage) {
	if q.size == q.capacity {
		q.grow()
	}
	q.buf[q.tail] = m
	q.tail++
	if q.tail == q.capacity {
		q.tail = 0
	}
	q.size++
}

// Pop removes and returns the oldest message.
//
// If the queue is empty, returns the zero message and false.
func (q *fifoQueue) Pop() (controlMessage, bool) {
	if q.size == 0 {
		return controlMessage{}, false
	}
	m := q.buf[q.head]
	q.buf[q.head] = controlMessage{} // drop the job reference
	q.head++
	if q.head == q.capacity {
		q.head = 0
	}
	q.size--
	return m, true
}

// grow doubles the ring and unwraps it so head starts at zero.
func (q *fifoQueue) grow() {
	newCap := q.capacity * 2
	buf := make([]controlMessage, newCap)

	n := copy(buf, q.buf[q.head:])
	copy(buf[n:], q.buf[:q.tail])

	q.buf = buf
	q.head = 0
	q.tail = q.size
	q.capacity = newCap
}
