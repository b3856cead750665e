package sim

import (
	"context"
	"fmt"
	"sync"
)

// Pen is the capacity-bounded holding store for one category (a "field").
// Each pen has its own mutex so agents working on different categories never
// contend. The stocking flag grants one TransferAgent at a time the right to
// place units; it is only ever acquired without blocking.
type Pen struct {
	category Category
	capacity int

	mu       sync.Mutex
	contents unitQueue
	stocking bool
	waiting  int
	changed  broadcast
}

// NewPen creates an empty pen.
func NewPen(category Category, capacity int) (*Pen, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidConfig, category)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: pen capacity must be positive, got %d", ErrInvalidConfig, capacity)
	}
	return &Pen{category: category, capacity: capacity, changed: newBroadcast()}, nil
}

// Category returns the pen's category.
func (p *Pen) Category() Category { return p.category }

// Capacity returns the maximum number of units the pen holds.
func (p *Pen) Capacity() int { return p.capacity }

// TryAcquireStocking sets the stocking flag if it is clear. It never blocks.
func (p *Pen) TryAcquireStocking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stocking {
		return false
	}
	p.stocking = true
	return true
}

// ReleaseStocking clears the stocking flag and wakes every blocked taker.
func (p *Pen) ReleaseStocking() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stocking = false
	p.changed.notifyAll()
}

// IsBeingStocked reports whether the stocking flag is held.
func (p *Pen) IsBeingStocked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stocking
}

// Add places u in the pen. It returns false, leaving the pen untouched, if u
// belongs to another category or the pen is full.
func (p *Pen) Add(u Unit) bool {
	if u.Category != p.category {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.contents.Len() >= p.capacity {
		return false
	}
	p.contents.Enqueue(u)
	p.changed.notifyAll()
	return true
}

// Take blocks while the pen is empty, then removes and returns the oldest unit.
func (p *Pen) Take(ctx context.Context) (Unit, error) {
	p.mu.Lock()
	for p.contents.Len() == 0 {
		ch := p.changed.wait()
		p.waiting++
		p.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			p.mu.Lock()
			p.waiting--
			p.mu.Unlock()
			return Unit{}, ctx.Err()
		}

		p.mu.Lock()
		p.waiting--
	}
	u, _ := p.contents.Dequeue()
	p.mu.Unlock()
	return u, nil
}

// Size returns the number of units in the pen.
func (p *Pen) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.contents.Len()
}

// IsFull reports whether the pen is at capacity.
func (p *Pen) IsFull() bool {
	return p.AvailableSpace() == 0
}

// IsEmpty reports whether the pen holds no units.
func (p *Pen) IsEmpty() bool {
	return p.Size() == 0
}

// AvailableSpace returns capacity minus size.
func (p *Pen) AvailableSpace() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity - p.contents.Len()
}

// Waiting returns the number of takers currently blocked on this pen.
func (p *Pen) Waiting() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waiting
}

func (p *Pen) String() string {
	return fmt.Sprintf("%s(%d/%d)", p.category, p.Size(), p.capacity)
}
