package sim

import (
	"context"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/farm-sim/sim/trace"
)

// Simulation wires a clock, a farm and every worker for one run.
type Simulation struct {
	RunID string

	cfg         Config
	clock       *Clock
	farm        *Farm
	metrics     *Metrics
	producer    *DeliveryProducer
	transfers   []*TransferAgent
	withdrawals []*WithdrawalAgent
}

// NewSimulation validates cfg and builds every component. Each worker gets
// its own RNG derived from cfg.Seed. rec may be nil.
func NewSimulation(cfg Config, rec trace.Recorder) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = trace.Nop{}
	}
	clock, err := NewClock(cfg.Clock.Interval())
	if err != nil {
		return nil, err
	}
	farm, err := NewFarm(cfg.Farm)
	if err != nil {
		return nil, err
	}
	metrics := &Metrics{}
	streams := NewStreams(cfg.Seed)

	s := &Simulation{
		RunID:    xid.New().String(),
		cfg:      cfg,
		clock:    clock,
		farm:     farm,
		metrics:  metrics,
		producer: NewDeliveryProducer(cfg.Delivery, farm, clock, streams.ForAgent(trace.ActorDelivery, 0), rec, metrics),
	}
	for i := 1; i <= cfg.Transfer.Agents; i++ {
		s.transfers = append(s.transfers,
			NewTransferAgent(i, cfg.Transfer, farm, clock, streams.ForAgent(trace.ActorFarmer, i), rec, metrics))
	}
	for i := 1; i <= cfg.Withdrawal.Agents; i++ {
		var target Category
		if cfg.Withdrawal.FixedCategory {
			target = categories[(i-1)%len(categories)]
		}
		w, err := NewWithdrawalAgent(i, cfg.Withdrawal, target, farm, clock, streams.ForAgent(trace.ActorBuyer, i), rec, metrics)
		if err != nil {
			return nil, err
		}
		s.withdrawals = append(s.withdrawals, w)
	}
	return s, nil
}

// Clock returns the run's virtual clock.
func (s *Simulation) Clock() *Clock { return s.clock }

// Farm returns the run's stores.
func (s *Simulation) Farm() *Farm { return s.farm }

// Metrics returns the run's live counters.
func (s *Simulation) Metrics() *Metrics { return s.metrics }

// TransferAgents returns the farmers in ID order.
func (s *Simulation) TransferAgents() []*TransferAgent { return s.transfers }

// WithdrawalAgents returns the buyers in ID order.
func (s *Simulation) WithdrawalAgents() []*WithdrawalAgent { return s.withdrawals }

// Collector returns a prometheus collector over this run.
func (s *Simulation) Collector() *Collector {
	return NewCollector(s.clock, s.farm, s.metrics)
}

// Snapshot reads the current store sizes. Safe during a run.
func (s *Simulation) Snapshot() FarmSnapshot { return s.farm.Snapshot() }

// Run starts the ticking routine and every worker, and blocks until the clock
// reaches the configured horizon or ctx is done. Every worker has returned by
// the time Run does, so the Report is exact.
func (s *Simulation) Run(ctx context.Context) (Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logrus.Infof("Starting farm simulation %s: %d farmers, %d buyers, pen capacity %d, horizon %d ticks",
		s.RunID, len(s.transfers), len(s.withdrawals), s.cfg.Farm.PenCapacity, s.cfg.Clock.HorizonTicks)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Stopping the clock ends every tick wait; cancel ends the store waits.
		defer cancel()
		return s.clock.Run(gctx, s.cfg.Clock.HorizonTicks)
	})
	g.Go(func() error { return s.producer.Run(gctx) })
	for _, a := range s.transfers {
		a := a
		g.Go(func() error { return a.Run(gctx) })
	}
	for _, w := range s.withdrawals {
		w := w
		g.Go(func() error { return w.Run(gctx) })
	}
	err := g.Wait()
	s.clock.Stop()

	report := newReport(s.RunID, s.clock.Now(), s.farm, s.metrics)
	logrus.Infof("Farm simulation %s finished at tick %d: delivered=%d sold=%d conserved=%t",
		s.RunID, report.FinalTick, report.Delivered, report.Sold, report.Conserved())
	return report, err
}
