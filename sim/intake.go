package sim

import (
	"context"
	"fmt"
	"sync"
)

// IntakeBuffer is the shared store receiving deliveries before they are sorted
// into pens. One mutex guards the whole buffer, so Deposit and Drain never
// interleave partially.
type IntakeBuffer struct {
	ids *IDGenerator

	mu      sync.Mutex
	units   unitQueue
	changed broadcast
}

// NewIntakeBuffer creates an empty buffer that draws unit IDs from ids.
func NewIntakeBuffer(ids *IDGenerator) *IntakeBuffer {
	if ids == nil {
		ids = &IDGenerator{}
	}
	return &IntakeBuffer{ids: ids, changed: newBroadcast()}
}

// Deposit creates counts[c] units of each category and appends them atomically,
// in fixed category order. Non-positive counts are skipped. Returns the created units.
func (b *IntakeBuffer) Deposit(counts map[Category]int) ([]Unit, error) {
	total := 0
	for c, n := range counts {
		if !c.Valid() {
			return nil, fmt.Errorf("deposit: unknown category %q", c)
		}
		if n > 0 {
			total += n
		}
	}
	if total == 0 {
		return nil, nil
	}

	units := make([]Unit, 0, total)
	for _, c := range categories {
		for i := 0; i < counts[c]; i++ {
			units = append(units, Unit{ID: b.ids.Next(), Category: c})
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.units.Enqueue(units...)
	b.changed.notifyAll()
	return units, nil
}

// Drain blocks until at least one unit is available, then removes up to maxUnits
// units, oldest first, grouped by category.
func (b *IntakeBuffer) Drain(ctx context.Context, maxUnits int) (Batch, error) {
	if maxUnits <= 0 {
		return nil, fmt.Errorf("drain: max must be positive, got %d", maxUnits)
	}
	for {
		b.mu.Lock()
		if b.units.Len() > 0 {
			batch := b.takeLocked(maxUnits)
			b.mu.Unlock()
			return batch, nil
		}
		ch := b.changed.wait()
		b.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// TryDrain is the non-blocking form of Drain. It returns an empty batch when
// the buffer is empty or maxUnits is not positive.
func (b *IntakeBuffer) TryDrain(maxUnits int) Batch {
	if maxUnits <= 0 {
		return Batch{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.takeLocked(maxUnits)
}

func (b *IntakeBuffer) takeLocked(maxUnits int) Batch {
	batch := make(Batch)
	for _, u := range b.units.DequeueN(maxUnits) {
		batch[u.Category] = append(batch[u.Category], u)
	}
	return batch
}

// Len returns the number of units waiting in the buffer.
func (b *IntakeBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.units.Len()
}

// Counts returns the number of waiting units per category.
func (b *IntakeBuffer) Counts() map[Category]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.units.CountBy()
}
