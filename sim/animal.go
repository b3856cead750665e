package sim

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Category is an animal kind. Each category has exactly one Pen.
type Category string

const (
	Pigs     Category = "pigs"
	Cows     Category = "cows"
	Sheep    Category = "sheep"
	Llamas   Category = "llamas"
	Chickens Category = "chickens"
)

// categories is the fixed iteration order used everywhere a batch is grouped.
var categories = []Category{Pigs, Cows, Sheep, Llamas, Chickens}

// Categories returns all categories in fixed iteration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range categories {
		if c == k {
			return true
		}
	}
	return false
}

// ParseCategory accepts singular or plural names, case-insensitive.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range categories {
		if name == string(c) || name+"s" == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown animal category %q", s)
}

// Unit is a single animal. Units are values; ID exists for test instrumentation.
type Unit struct {
	ID       uint64
	Category Category
}

// IDGenerator hands out unique unit IDs starting at 1.
// Owned by the Farm so that independent farms never share state.
type IDGenerator struct {
	last atomic.Uint64
}

// Next returns a fresh ID.
func (g *IDGenerator) Next() uint64 {
	return g.last.Add(1)
}

// Batch groups units by category.
type Batch map[Category][]Unit

// Len returns the total number of units in the batch.
func (b Batch) Len() int {
	n := 0
	for _, units := range b {
		n += len(units)
	}
	return n
}

// Counts returns per-category unit counts, omitting empty categories.
func (b Batch) Counts() map[Category]int {
	out := make(map[Category]int, len(b))
	for c, units := range b {
		if len(units) > 0 {
			out[c] = len(units)
		}
	}
	return out
}

// Present returns the non-empty categories of the batch in fixed order.
func (b Batch) Present() []Category {
	var out []Category
	for _, c := range categories {
		if len(b[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// merge returns a batch holding the units of both b and other, b's first.
func (b Batch) merge(other Batch) Batch {
	out := make(Batch, len(categories))
	for _, c := range categories {
		if n := len(b[c]) + len(other[c]); n > 0 {
			units := make([]Unit, 0, n)
			units = append(units, b[c]...)
			out[c] = append(units, other[c]...)
		}
	}
	return out
}
