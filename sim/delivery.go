package sim

import (
	"context"
	"errors"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/farm-sim/sim/trace"
)

// cleanExit maps cancellation and clock stop to a nil error.
func cleanExit(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrClockStopped) {
		return nil
	}
	return err
}

// DeliveryProducer injects batches of new units into the intake buffer.
// Two triggers are evaluated once per tick, independently:
//   - fixed interval: a delivery on every tick divisible by IntervalTicks
//   - probabilistic: a delivery with probability Probability
type DeliveryProducer struct {
	cfg     DeliveryConfig
	farm    *Farm
	clock   *Clock
	rng     *rand.Rand
	rec     trace.Recorder
	metrics *Metrics

	evaluated uint64 // last tick whose triggers were evaluated; owned by Run
}

// NewDeliveryProducer creates a producer. rng must not be shared with another goroutine.
func NewDeliveryProducer(cfg DeliveryConfig, farm *Farm, clock *Clock, rng *rand.Rand, rec trace.Recorder, m *Metrics) *DeliveryProducer {
	if rec == nil {
		rec = trace.Nop{}
	}
	if m == nil {
		m = &Metrics{}
	}
	return &DeliveryProducer{cfg: cfg, farm: farm, clock: clock, rng: rng, rec: rec, metrics: m, evaluated: clock.Now()}
}

// Run evaluates the triggers once for every tick after construction, in
// order, until the clock stops or ctx is done.
func (d *DeliveryProducer) Run(ctx context.Context) error {
	for {
		if err := d.clock.WaitUntil(ctx, d.evaluated+1); err != nil {
			return cleanExit(err)
		}
		d.evaluated++
		tick := d.evaluated
		for i := d.Triggered(tick); i > 0; i-- {
			if err := d.Deliver(tick); err != nil {
				return err
			}
		}
	}
}

// Triggered returns how many deliveries fire at tick: up to one per trigger.
// The probabilistic trigger consumes one random draw per call when enabled.
func (d *DeliveryProducer) Triggered(tick uint64) int {
	n := 0
	if d.cfg.IntervalTicks > 0 && tick%d.cfg.IntervalTicks == 0 {
		n++
	}
	if d.cfg.Probability > 0 && d.rng.Float64() < d.cfg.Probability {
		n++
	}
	return n
}

// Split draws a batch of BatchSize units, choosing each unit's category
// independently and uniformly (a multinomial split).
func (d *DeliveryProducer) Split() map[Category]int {
	counts := make(map[Category]int, len(categories))
	for _, c := range categories {
		counts[c] = 0
	}
	for i := 0; i < d.cfg.BatchSize; i++ {
		counts[categories[d.rng.Intn(len(categories))]]++
	}
	return counts
}

// Deliver manufactures one batch and deposits it.
func (d *DeliveryProducer) Deliver(tick uint64) error {
	counts := d.Split()
	units, err := d.farm.Deliver(counts)
	if err != nil {
		return err
	}
	d.metrics.Deliveries.Add(1)
	d.metrics.Delivered.Add(int64(len(units)))

	payload := trace.Payload{trace.KeyTotal: len(units)}
	for c, n := range counts {
		if n > 0 {
			payload[string(c)] = n
		}
	}
	d.rec.Record(tick, trace.ActorDelivery, 0, trace.EventDelivery, payload)
	logrus.Debugf("[tick %07d] delivery of %d units: %v", tick, len(units), counts)
	return nil
}
