package sim

import (
	"context"
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/farm-sim/sim/trace"
)

// emptyPenBonus is the priority added for a destination pen that is empty.
const emptyPenBonus = 100.0

// TransferState is a TransferAgent's position in its work cycle.
type TransferState int32

const (
	StateIdle TransferState = iota
	StateWaitForIntake
	StateCollect
	StatePrioritize
	StateTravel
	StateStock
	StateReturn
	StateOnBreak
)

func (s TransferState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaitForIntake:
		return "wait_for_intake"
	case StateCollect:
		return "collect"
	case StatePrioritize:
		return "prioritize"
	case StateTravel:
		return "travel"
	case StateStock:
		return "stock"
	case StateReturn:
		return "return"
	case StateOnBreak:
		return "on_break"
	default:
		return "unknown"
	}
}

// TransferAgent (a farmer) moves units from the intake buffer into pens.
//
// Each cycle it collects a batch, orders the categories by priority, then for
// each category travels to the pen and stocks it under the pen's stocking
// exclusivity. Units a full pen refuses are carried into the next cycle.
type TransferAgent struct {
	id      int
	cfg     TransferConfig
	farm    *Farm
	clock   *Clock
	rng     *rand.Rand
	rec     trace.Recorder
	metrics *Metrics

	state atomic.Int32

	// Owned by the Run goroutine.
	carried        Batch
	workTicks      uint64
	breakThreshold uint64
}

// NewTransferAgent creates an idle agent. rng must not be shared with another goroutine.
func NewTransferAgent(id int, cfg TransferConfig, farm *Farm, clock *Clock, rng *rand.Rand, rec trace.Recorder, m *Metrics) *TransferAgent {
	if rec == nil {
		rec = trace.Nop{}
	}
	if m == nil {
		m = &Metrics{}
	}
	a := &TransferAgent{id: id, cfg: cfg, farm: farm, clock: clock, rng: rng, rec: rec, metrics: m}
	a.breakThreshold = a.drawBreakThreshold()
	return a
}

// ID returns the agent's identifier.
func (a *TransferAgent) ID() int { return a.id }

// State returns the agent's current state. Safe to call from any goroutine.
func (a *TransferAgent) State() TransferState {
	return TransferState(a.state.Load())
}

func (a *TransferAgent) setState(s TransferState) {
	a.state.Store(int32(s))
}

// Carried returns the number of units the agent still holds.
// Only meaningful once Run has returned.
func (a *TransferAgent) Carried() int {
	return a.carried.Len()
}

// Run repeats work cycles until the clock stops or ctx is done.
func (a *TransferAgent) Run(ctx context.Context) error {
	defer a.setState(StateIdle)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := a.cycle(ctx); err != nil {
			return cleanExit(err)
		}
	}
}

func (a *TransferAgent) cycle(ctx context.Context) error {
	batch, err := a.collect(ctx)
	if err != nil {
		return err
	}
	// Whatever is left in batch on any exit path is carried, never dropped.
	defer func() { a.carried = batch }()

	a.setState(StatePrioritize)
	route := a.prioritize(batch)
	if len(route) == 0 {
		// Every destination is full. Hold the units and look again later.
		a.setState(StateIdle)
		return a.clock.Wait(ctx, a.cfg.BackoffTicks)
	}

	var work uint64
	toPlace := 0
	for _, c := range route {
		toPlace += len(batch[c])
	}
	for _, c := range route {
		a.setState(StateTravel)
		travel := a.cfg.BaseTravelTicks + uint64(toPlace)
		if err := a.clock.Wait(ctx, travel); err != nil {
			return err
		}
		work += travel
		toPlace -= len(batch[c])

		a.setState(StateStock)
		placed, spent, err := a.stock(ctx, a.farm.Pen(c), batch[c])
		work += spent
		if rest := batch[c][placed:]; len(rest) > 0 {
			batch[c] = rest
		} else {
			delete(batch, c)
		}
		if err != nil {
			return err
		}
	}

	a.setState(StateReturn)
	if err := a.clock.Wait(ctx, a.cfg.ReturnTicks); err != nil {
		return err
	}
	work += a.cfg.ReturnTicks
	a.rec.Record(a.clock.Now(), trace.ActorFarmer, a.id, trace.EventReturned, nil)

	a.workTicks += work
	if a.cfg.BreakTicks > 0 && a.workTicks >= a.breakThreshold {
		return a.takeBreak(ctx)
	}
	a.setState(StateIdle)
	return nil
}

// collect blocks for new units when the agent carries nothing; otherwise it
// tops up its leftovers without blocking. Leftovers bound for full pens do
// not count against BatchCap, so a pen that stays full never stops the agent
// from clearing the intake buffer.
func (a *TransferAgent) collect(ctx context.Context) (Batch, error) {
	start := a.clock.Now()
	carried := a.carried
	a.carried = nil

	var fresh Batch
	if carried.Len() == 0 {
		a.setState(StateWaitForIntake)
		var err error
		fresh, err = a.farm.Intake().Drain(ctx, a.cfg.BatchCap)
		if err != nil {
			return nil, err
		}
	} else {
		fresh = a.farm.Intake().TryDrain(a.cfg.BatchCap - a.placeable(carried))
	}
	a.setState(StateCollect)
	a.metrics.InTransit.Add(int64(fresh.Len()))

	if n := fresh.Len(); n > 0 {
		now := a.clock.Now()
		payload := trace.Payload{trace.KeyWaitedTicks: now - start}
		for c, k := range fresh.Counts() {
			payload[string(c)] = k
		}
		a.rec.Record(now, trace.ActorFarmer, a.id, trace.EventCollected, payload)
	}
	return carried.merge(fresh), nil
}

// placeable counts the units in b whose pen currently has room.
func (a *TransferAgent) placeable(b Batch) int {
	n := 0
	for c, units := range b {
		if !a.farm.Pen(c).IsFull() {
			n += len(units)
		}
	}
	return n
}

// prioritize orders the batch's categories so that empty or in-demand pens
// are stocked first. Full pens are left off the route. Ties keep fixed
// category order.
func (a *TransferAgent) prioritize(batch Batch) []Category {
	present := make([]Category, 0, len(batch))
	scores := make(map[Category]float64, len(batch))
	for _, c := range batch.Present() {
		pen := a.farm.Pen(c)
		if pen.IsFull() {
			continue
		}
		present = append(present, c)
		score := 0.0
		if pen.IsEmpty() {
			score += emptyPenBonus
		}
		score += float64(pen.Waiting()) * a.cfg.WaitingWeight
		score += float64(pen.AvailableSpace()) * a.cfg.HeadroomWeight
		scores[c] = score
	}
	sort.SliceStable(present, func(i, j int) bool {
		return scores[present[i]] > scores[present[j]]
	})
	return present
}

// stock acquires pen's stocking exclusivity, retrying after BackoffTicks
// while another agent holds it, then places units one tick each until done
// or the pen is full. Returns the number placed and the ticks worked.
func (a *TransferAgent) stock(ctx context.Context, pen *Pen, units []Unit) (placed int, spent uint64, err error) {
	for !pen.TryAcquireStocking() {
		if err := a.clock.Wait(ctx, a.cfg.BackoffTicks); err != nil {
			return 0, 0, err
		}
	}
	defer pen.ReleaseStocking()
	defer func() {
		a.rec.Record(a.clock.Now(), trace.ActorFarmer, a.id, trace.EventStocked, trace.Payload{
			trace.KeyField: string(pen.Category()),
			trace.KeyCount: placed,
			trace.KeyLeft:  len(units) - placed,
		})
	}()

	for _, u := range units {
		if !pen.Add(u) {
			a.metrics.Rejected.Add(1)
			logrus.Debugf("farmer %d: %s full, carrying %d", a.id, pen, len(units)-placed)
			return placed, spent, nil
		}
		placed++
		a.metrics.Stocked.Add(1)
		a.metrics.InTransit.Add(-1)
		if err := a.clock.Wait(ctx, 1); err != nil {
			return placed, spent, err
		}
		spent++
	}
	return placed, spent, nil
}

func (a *TransferAgent) takeBreak(ctx context.Context) error {
	a.setState(StateOnBreak)
	a.metrics.Breaks.Add(1)
	a.rec.Record(a.clock.Now(), trace.ActorFarmer, a.id, trace.EventBreakStart, trace.Payload{trace.KeyWorkTicks: a.workTicks})

	a.workTicks = 0
	a.breakThreshold = a.drawBreakThreshold()
	if err := a.clock.Wait(ctx, a.cfg.BreakTicks); err != nil {
		return err
	}
	a.rec.Record(a.clock.Now(), trace.ActorFarmer, a.id, trace.EventBreakEnd, nil)
	a.setState(StateIdle)
	return nil
}

// drawBreakThreshold picks the work needed before the next break uniformly
// from [BreakMinTicks, BreakMaxTicks].
func (a *TransferAgent) drawBreakThreshold() uint64 {
	span := a.cfg.BreakMaxTicks - a.cfg.BreakMinTicks
	if a.cfg.BreakMaxTicks < a.cfg.BreakMinTicks || span == 0 || a.rng == nil {
		return a.cfg.BreakMinTicks
	}
	return a.cfg.BreakMinTicks + uint64(a.rng.Int63n(int64(span)+1))
}
