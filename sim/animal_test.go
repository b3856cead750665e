package sim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"pigs", Pigs},
		{"Pig", Pigs},
		{" cow ", Cows},
		{"sheep", Sheep},
		{"LLAMA", Llamas},
		{"chickens", Chickens},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCategory("goat")
	assert.Error(t, err)
}

func TestCategories_FixedOrderAndCopy(t *testing.T) {
	got := Categories()
	assert.Equal(t, []Category{Pigs, Cows, Sheep, Llamas, Chickens}, got)
	got[0] = "mutated"
	assert.Equal(t, Pigs, Categories()[0])
}

func TestIDGenerator_ConcurrentNext_Unique(t *testing.T) {
	var g IDGenerator
	var mu sync.Mutex
	seen := make(map[uint64]bool)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := g.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}

func TestBatch_MergeKeepsLeftoversFirst(t *testing.T) {
	carried := Batch{Pigs: {{ID: 1, Category: Pigs}}}
	fresh := Batch{Pigs: {{ID: 5, Category: Pigs}}, Cows: {{ID: 6, Category: Cows}}}

	merged := carried.merge(fresh)

	assert.Equal(t, 3, merged.Len())
	assert.Equal(t, []uint64{1, 5}, []uint64{merged[Pigs][0].ID, merged[Pigs][1].ID})
	assert.Equal(t, map[Category]int{Pigs: 2, Cows: 1}, merged.Counts())
	assert.Equal(t, 0, Batch(nil).Len())
}
