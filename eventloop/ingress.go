package eventloop

import (
	"sync"
)

// chunkSize is the number of callbacks per node in a taskQueue.
const chunkSize = 128

// taskQueue is a chunked linked-list FIFO of callbacks.
//
// Thread Safety: NOT thread-safe, the Loop guards it with its mutex.
//
// Fixed-size chunks amortize allocations, and exhausted chunks are recycled
// through chunkPool.
type taskQueue struct {
	head   *chunk
	tail   *chunk
	length int
}

var chunkPool = sync.Pool{
	New: func() any {
		return &chunk{}
	},
}

// chunk uses readPos/pos cursors for O(1) push/pop without shifting.
type chunk struct {
	tasks   [chunkSize]func()
	next    *chunk
	readPos int // first unread slot
	pos     int // first unused slot
}

func newChunk() *chunk {
	c := chunkPool.Get().(*chunk)
	c.pos = 0
	c.readPos = 0
	c.next = nil
	return c
}

// returnChunk clears any retained closures before pooling the chunk.
func returnChunk(c *chunk) {
	for i := 0; i < c.pos; i++ {
		c.tasks[i] = nil
	}
	c.pos = 0
	c.readPos = 0
	c.next = nil
	chunkPool.Put(c)
}

func (q *taskQueue) push(fn func()) {
	if q.tail == nil {
		q.tail = newChunk()
		q.head = q.tail
	}
	if q.tail.pos == len(q.tail.tasks) {
		next := newChunk()
		q.tail.next = next
		q.tail = next
	}
	q.tail.tasks[q.tail.pos] = fn
	q.tail.pos++
	q.length++
}

func (q *taskQueue) pop() (func(), bool) {
	if q.length == 0 {
		return nil, false
	}

	if q.head.readPos >= q.head.pos {
		old := q.head
		q.head = old.next
		returnChunk(old)
	}

	fn := q.head.tasks[q.head.readPos]
	q.head.tasks[q.head.readPos] = nil
	q.head.readPos++
	q.length--

	if q.head.readPos >= q.head.pos && q.head == q.tail {
		// only chunk, now empty: rewind for reuse
		q.head.pos = 0
		q.head.readPos = 0
	}

	return fn, true
}

func (q *taskQueue) len() int {
	return q.length
}
