package sim

import "testing"

func TestUnitQueue_DequeueN_OldestFirst(t *testing.T) {
	// GIVEN a queue with units [1, 2, 3]
	q := &unitQueue{}
	q.Enqueue(Unit{ID: 1, Category: Pigs}, Unit{ID: 2, Category: Cows}, Unit{ID: 3, Category: Pigs})

	// WHEN two units are dequeued
	got := q.DequeueN(2)

	// THEN the two oldest come out and one remains
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("DequeueN(2): got %v, want IDs [1 2]", got)
	}
	if q.Len() != 1 {
		t.Errorf("Len after DequeueN: got %d, want 1", q.Len())
	}
}

func TestUnitQueue_DequeueN_MoreThanLen(t *testing.T) {
	q := &unitQueue{}
	q.Enqueue(Unit{ID: 1, Category: Sheep})

	got := q.DequeueN(10)

	if len(got) != 1 {
		t.Errorf("DequeueN(10) on 1-element queue: got %d units, want 1", len(got))
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty after draining: %d", q.Len())
	}
	if got := q.DequeueN(3); got != nil {
		t.Errorf("DequeueN on empty queue: got %v, want nil", got)
	}
}

func TestUnitQueue_Dequeue_Empty(t *testing.T) {
	q := &unitQueue{}
	if _, ok := q.Dequeue(); ok {
		t.Error("Dequeue on empty queue reported ok")
	}
}

func TestUnitQueue_CountByAndString(t *testing.T) {
	q := &unitQueue{}
	q.Enqueue(Unit{ID: 1, Category: Pigs}, Unit{ID: 2, Category: Pigs}, Unit{ID: 3, Category: Llamas})

	counts := q.CountBy()
	if counts[Pigs] != 2 || counts[Llamas] != 1 {
		t.Errorf("CountBy: got %v", counts)
	}
	if got, want := q.String(), "[pigs#1 pigs#2 llamas#3]"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
}
