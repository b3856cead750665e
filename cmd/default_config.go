package cmd

import (
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/farm-sim/sim"
)

// resolveConfig builds the run configuration: defaults, then the YAML file
// given by --config, then every flag the user set explicitly. Flags left at
// their defaults never overwrite values from the file.
func resolveConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("horizon") {
		cfg.Clock.HorizonTicks = horizon
	}
	if flags.Changed("tick-ms") {
		cfg.Clock.TickIntervalMs = tickMs
	}
	if flags.Changed("pen-capacity") {
		cfg.Farm.PenCapacity = penCapacity
	}
	if flags.Changed("initial-per-pen") {
		cfg.Farm.InitialPerPen = initialPerPen
	}
	if flags.Changed("delivery-size") {
		cfg.Delivery.BatchSize = batchSize
	}
	if flags.Changed("delivery-interval") {
		cfg.Delivery.IntervalTicks = deliveryInterval
	}
	if flags.Changed("delivery-probability") {
		cfg.Delivery.Probability = deliveryProbability
	}
	if flags.Changed("farmers") {
		cfg.Transfer.Agents = farmers
	}
	if flags.Changed("farmer-batch") {
		cfg.Transfer.BatchCap = farmerBatch
	}
	if flags.Changed("travel-ticks") {
		cfg.Transfer.BaseTravelTicks = travelTicks
	}
	if flags.Changed("return-ticks") {
		cfg.Transfer.ReturnTicks = returnTicks
	}
	if flags.Changed("break-min") {
		cfg.Transfer.BreakMinTicks = breakMin
	}
	if flags.Changed("break-max") {
		cfg.Transfer.BreakMaxTicks = breakMax
	}
	if flags.Changed("break-ticks") {
		cfg.Transfer.BreakTicks = breakTicks
	}
	if flags.Changed("buyers") {
		cfg.Withdrawal.Agents = buyers
	}
	if flags.Changed("buyer-delay") {
		cfg.Withdrawal.MeanDelayTicks = buyerDelay
	}
	if flags.Changed("buyer-fixed") {
		cfg.Withdrawal.FixedCategory = buyerFixed
	}
	return cfg, cfg.Validate()
}
