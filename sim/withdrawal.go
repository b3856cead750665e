package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/inference-sim/farm-sim/sim/trace"
)

// WithdrawalAgent (a buyer) repeatedly waits a random delay, then blocks on a
// pen until it can remove one unit.
type WithdrawalAgent struct {
	id       int
	cfg      WithdrawalConfig
	category Category // empty: pick a random pen per attempt
	farm     *Farm
	clock    *Clock
	rng      *rand.Rand
	rec      trace.Recorder
	metrics  *Metrics
}

// NewWithdrawalAgent creates a buyer. A non-empty category fixes the target
// pen; an empty one selects a random pen on every attempt.
// rng must not be shared with another goroutine.
func NewWithdrawalAgent(id int, cfg WithdrawalConfig, category Category, farm *Farm, clock *Clock, rng *rand.Rand, rec trace.Recorder, m *Metrics) (*WithdrawalAgent, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: buyer %d: unknown category %q", ErrInvalidConfig, id, category)
	}
	if rec == nil {
		rec = trace.Nop{}
	}
	if m == nil {
		m = &Metrics{}
	}
	return &WithdrawalAgent{id: id, cfg: cfg, category: category, farm: farm, clock: clock, rng: rng, rec: rec, metrics: m}, nil
}

// ID returns the agent's identifier.
func (w *WithdrawalAgent) ID() int { return w.id }

// Category returns the fixed target category, or "" for random targeting.
func (w *WithdrawalAgent) Category() Category { return w.category }

// Run loops delay, purchase until the clock stops or ctx is done.
func (w *WithdrawalAgent) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := w.clock.Wait(ctx, w.nextDelay()); err != nil {
			return cleanExit(err)
		}
		if _, err := w.purchase(ctx); err != nil {
			return cleanExit(err)
		}
	}
}

// maxPurchaseDelay caps a single exponential draw.
const maxPurchaseDelay = 1 << 40

// nextDelay draws an exponential inter-purchase delay with mean
// MeanDelayTicks, clamped to [1, maxPurchaseDelay].
func (w *WithdrawalAgent) nextDelay() uint64 {
	d := math.Round(w.rng.ExpFloat64() * w.cfg.MeanDelayTicks)
	switch {
	case d < 1:
		return 1
	case d > maxPurchaseDelay:
		return maxPurchaseDelay
	}
	return uint64(d)
}

func (w *WithdrawalAgent) choosePen() *Pen {
	if w.category != "" {
		return w.farm.Pen(w.category)
	}
	return w.farm.Pen(categories[w.rng.Intn(len(categories))])
}

// purchase takes one unit from the chosen pen, pays the processing cost and
// records the wait. The sale is recorded even if processing is interrupted.
func (w *WithdrawalAgent) purchase(ctx context.Context) (Unit, error) {
	pen := w.choosePen()
	start := w.clock.Now()
	u, err := pen.Take(ctx)
	if err != nil {
		return Unit{}, err
	}
	waited := w.clock.Now() - start
	w.metrics.Sold.Add(1)
	w.metrics.BuyerWaitTicks.Add(int64(waited))

	err = w.clock.Wait(ctx, w.cfg.ProcessingTicks)
	w.rec.Record(w.clock.Now(), trace.ActorBuyer, w.id, trace.EventBought, trace.Payload{
		trace.KeyField:       string(pen.Category()),
		trace.KeyWaitedTicks: waited,
	})
	return u, err
}
