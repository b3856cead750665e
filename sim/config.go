package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every construction-time validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// MaxMeanDelayTicks bounds WithdrawalConfig.MeanDelayTicks.
const MaxMeanDelayTicks = 1e9

// ClockConfig groups virtual clock parameters.
type ClockConfig struct {
	TickIntervalMs int    `yaml:"tick_interval_ms"` // wall-clock duration of one tick (must be > 0)
	HorizonTicks   uint64 `yaml:"horizon_ticks"`    // stop after this tick (0 = run until cancelled)
}

// Interval returns the tick interval as a time.Duration.
func (c ClockConfig) Interval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// FarmConfig groups store parameters.
type FarmConfig struct {
	PenCapacity   int `yaml:"pen_capacity"`    // per-pen capacity (must be > 0)
	InitialPerPen int `yaml:"initial_per_pen"` // units seeded into each pen at construction
}

// DeliveryConfig groups delivery trigger parameters. Both triggers are
// independent; either may be disabled by its zero value.
type DeliveryConfig struct {
	BatchSize     int     `yaml:"batch_size"`     // units per delivery
	IntervalTicks uint64  `yaml:"interval_ticks"` // deliver every N ticks (0 = off)
	Probability   float64 `yaml:"probability"`    // per-tick delivery probability (0 = off)
}

// TransferConfig groups TransferAgent (farmer) parameters.
type TransferConfig struct {
	Agents          int     `yaml:"agents"`
	BatchCap        int     `yaml:"batch_cap"`         // max units carried per cycle (must be > 0)
	BaseTravelTicks uint64  `yaml:"base_travel_ticks"` // travel cost before remaining load is added
	ReturnTicks     uint64  `yaml:"return_ticks"`      // cost of walking back to the intake
	BackoffTicks    uint64  `yaml:"backoff_ticks"`     // wait between stocking attempts (must be > 0)
	BreakMinTicks   uint64  `yaml:"break_min_ticks"`   // work needed before a break, lower bound
	BreakMaxTicks   uint64  `yaml:"break_max_ticks"`   // work needed before a break, upper bound
	BreakTicks      uint64  `yaml:"break_ticks"`       // break duration (0 = never break)
	WaitingWeight   float64 `yaml:"waiting_weight"`    // priority per withdrawal agent waiting on a pen
	HeadroomWeight  float64 `yaml:"headroom_weight"`   // priority per free slot in a pen
}

// WithdrawalConfig groups WithdrawalAgent (buyer) parameters.
type WithdrawalConfig struct {
	Agents          int     `yaml:"agents"`
	MeanDelayTicks  float64 `yaml:"mean_delay_ticks"` // mean inter-purchase delay (exponential)
	ProcessingTicks uint64  `yaml:"processing_ticks"` // cost paid after each purchase
	FixedCategory   bool    `yaml:"fixed_category"`   // true: agent i always buys categories[i%5]
}

// Config is the full simulation configuration, loadable from a YAML file.
type Config struct {
	Seed       int64            `yaml:"seed"`
	Clock      ClockConfig      `yaml:"clock"`
	Farm       FarmConfig       `yaml:"farm"`
	Delivery   DeliveryConfig   `yaml:"delivery"`
	Transfer   TransferConfig   `yaml:"transfer"`
	Withdrawal WithdrawalConfig `yaml:"withdrawal"`
}

// DefaultConfig returns the reference configuration: 100ms ticks, one day of
// 1000 ticks, five farmers and one buyer per field.
func DefaultConfig() Config {
	return Config{
		Seed: 42,
		Clock: ClockConfig{
			TickIntervalMs: 100,
			HorizonTicks:   1000,
		},
		Farm: FarmConfig{
			PenCapacity:   100,
			InitialPerPen: 0,
		},
		Delivery: DeliveryConfig{
			BatchSize:     10,
			IntervalTicks: 0,
			Probability:   0.01,
		},
		Transfer: TransferConfig{
			Agents:          5,
			BatchCap:        10,
			BaseTravelTicks: 10,
			ReturnTicks:     10,
			BackoffTicks:    1,
			BreakMinTicks:   200,
			BreakMaxTicks:   300,
			BreakTicks:      150,
			WaitingWeight:   10,
			HeadroomWeight:  1,
		},
		Withdrawal: WithdrawalConfig{
			Agents:          len(categories),
			MeanDelayTicks:  100,
			ProcessingTicks: 1,
			FixedCategory:   true,
		},
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks every parameter range. All errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Clock.TickIntervalMs <= 0 {
		return invalid("tick_interval_ms must be positive, got %d", c.Clock.TickIntervalMs)
	}
	if c.Farm.PenCapacity <= 0 {
		return invalid("pen_capacity must be positive, got %d", c.Farm.PenCapacity)
	}
	if c.Farm.InitialPerPen < 0 || c.Farm.InitialPerPen > c.Farm.PenCapacity {
		return invalid("initial_per_pen must be in [0, %d], got %d", c.Farm.PenCapacity, c.Farm.InitialPerPen)
	}
	if c.Delivery.BatchSize < 0 {
		return invalid("batch_size must be non-negative, got %d", c.Delivery.BatchSize)
	}
	if c.Delivery.Probability < 0 || c.Delivery.Probability > 1 {
		return invalid("probability must be in [0, 1], got %f", c.Delivery.Probability)
	}
	if c.Transfer.Agents < 0 {
		return invalid("transfer agents must be non-negative, got %d", c.Transfer.Agents)
	}
	if c.Transfer.BatchCap <= 0 {
		return invalid("batch_cap must be positive, got %d", c.Transfer.BatchCap)
	}
	if c.Transfer.BackoffTicks == 0 {
		return invalid("backoff_ticks must be positive")
	}
	if c.Transfer.BreakMinTicks > c.Transfer.BreakMaxTicks {
		return invalid("break_min_ticks (%d) exceeds break_max_ticks (%d)", c.Transfer.BreakMinTicks, c.Transfer.BreakMaxTicks)
	}
	if c.Transfer.WaitingWeight < 0 || c.Transfer.HeadroomWeight < 0 {
		return invalid("priority weights must be non-negative, got waiting=%f headroom=%f",
			c.Transfer.WaitingWeight, c.Transfer.HeadroomWeight)
	}
	if c.Withdrawal.Agents < 0 {
		return invalid("withdrawal agents must be non-negative, got %d", c.Withdrawal.Agents)
	}
	if !(c.Withdrawal.MeanDelayTicks >= 0 && c.Withdrawal.MeanDelayTicks <= MaxMeanDelayTicks) {
		return invalid("mean_delay_ticks must be in [0, %g], got %g", float64(MaxMeanDelayTicks), c.Withdrawal.MeanDelayTicks)
	}
	return nil
}

// LoadConfig reads a YAML configuration file over DefaultConfig.
// Unknown keys are rejected so that typos surface as errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
