// Implements the unitQueue, the FIFO storage behind IntakeBuffer and Pen.

package sim

import (
	"fmt"
	"strings"
)

// unitQueue is a FIFO of units. It is not synchronized; the owning store's
// mutex guards every call.
type unitQueue struct {
	queue []Unit
}

// Enqueue adds units to the back of the queue.
func (q *unitQueue) Enqueue(units ...Unit) {
	q.queue = append(q.queue, units...)
}

// Len returns the number of queued units.
func (q *unitQueue) Len() int {
	return len(q.queue)
}

// Dequeue removes the front unit. ok is false if the queue is empty.
func (q *unitQueue) Dequeue() (u Unit, ok bool) {
	if len(q.queue) == 0 {
		return Unit{}, false
	}
	u = q.queue[0]
	q.queue = q.queue[1:]
	if len(q.queue) == 0 {
		q.queue = nil
	}
	return u, true
}

// DequeueN removes up to n units from the front, oldest first.
func (q *unitQueue) DequeueN(n int) []Unit {
	if n > len(q.queue) {
		n = len(q.queue)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Unit, n)
	copy(out, q.queue[:n])
	q.queue = q.queue[n:]
	if len(q.queue) == 0 {
		q.queue = nil
	}
	return out
}

// CountBy returns the number of queued units per category.
func (q *unitQueue) CountBy() map[Category]int {
	out := make(map[Category]int)
	for _, u := range q.queue {
		out[u.Category]++
	}
	return out
}

func (q *unitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, u := range q.queue {
		sb.WriteString(fmt.Sprintf("%s#%d", u.Category, u.ID))
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
