package sim

import "fmt"

// Farm is the aggregate root: one IntakeBuffer and one Pen per category.
// It holds no lock of its own; every operation delegates to the owned stores.
type Farm struct {
	ids    *IDGenerator
	intake *IntakeBuffer
	pens   map[Category]*Pen
	seeded int
}

// NewFarm builds the stores and seeds each pen with cfg.InitialPerPen units.
func NewFarm(cfg FarmConfig) (*Farm, error) {
	if cfg.InitialPerPen < 0 || cfg.InitialPerPen > cfg.PenCapacity {
		return nil, fmt.Errorf("%w: initial_per_pen must be in [0, %d], got %d",
			ErrInvalidConfig, cfg.PenCapacity, cfg.InitialPerPen)
	}
	ids := &IDGenerator{}
	f := &Farm{
		ids:    ids,
		intake: NewIntakeBuffer(ids),
		pens:   make(map[Category]*Pen, len(categories)),
	}
	for _, c := range categories {
		pen, err := NewPen(c, cfg.PenCapacity)
		if err != nil {
			return nil, err
		}
		for i := 0; i < cfg.InitialPerPen; i++ {
			pen.Add(Unit{ID: ids.Next(), Category: c})
			f.seeded++
		}
		f.pens[c] = pen
	}
	return f, nil
}

// Intake returns the shared intake buffer.
func (f *Farm) Intake() *IntakeBuffer { return f.intake }

// Pen returns the pen for category c, or nil for an unknown category.
func (f *Farm) Pen(c Category) *Pen { return f.pens[c] }

// Pens returns every pen in fixed category order.
func (f *Farm) Pens() []*Pen {
	out := make([]*Pen, 0, len(categories))
	for _, c := range categories {
		out = append(out, f.pens[c])
	}
	return out
}

// Seeded returns the number of units placed in pens at construction.
func (f *Farm) Seeded() int { return f.seeded }

// Deliver deposits a delivery batch into the intake buffer.
func (f *Farm) Deliver(counts map[Category]int) ([]Unit, error) {
	return f.intake.Deposit(counts)
}

// FarmSnapshot is a point-in-time view of store sizes. Sizes are read
// store by store, so the snapshot is not atomic across stores.
type FarmSnapshot struct {
	IntakeSize int
	PenSizes   map[Category]int
	Stocking   map[Category]bool
}

// InPens returns the total number of units across all pens.
func (s FarmSnapshot) InPens() int {
	n := 0
	for _, size := range s.PenSizes {
		n += size
	}
	return n
}

// Snapshot reads every store's size.
func (f *Farm) Snapshot() FarmSnapshot {
	snap := FarmSnapshot{
		IntakeSize: f.intake.Len(),
		PenSizes:   make(map[Category]int, len(categories)),
		Stocking:   make(map[Category]bool, len(categories)),
	}
	for _, c := range categories {
		snap.PenSizes[c] = f.pens[c].Size()
		snap.Stocking[c] = f.pens[c].IsBeingStocked()
	}
	return snap
}
