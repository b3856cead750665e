package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/farm-sim/sim"
	"github.com/inference-sim/farm-sim/sim/trace"
)

var (
	// CLI flags for the run command
	configPath          string  // Optional YAML config file
	seed                int64   // Seed for delivery splits, farmer breaks and buyer delays
	horizon             uint64  // Total simulation time (in ticks)
	logLevel            string  // Log verbosity level
	quiet               bool    // Suppress per-event lines
	summary             bool    // Print an event summary after the report
	metricsOut          string  // Prometheus textfile output path
	tickMs              int     // Wall-clock milliseconds per tick
	penCapacity         int     // Capacity of each pen
	initialPerPen       int     // Units seeded into each pen
	batchSize           int     // Units per delivery
	deliveryInterval    uint64  // Deliver every N ticks
	deliveryProbability float64 // Per-tick delivery probability
	farmers             int     // Number of transfer agents
	farmerBatch         int     // Max units a farmer carries per cycle
	travelTicks         uint64  // Base travel cost
	returnTicks         uint64  // Return-to-intake cost
	breakMin            uint64  // Work before a break, lower bound
	breakMax            uint64  // Work before a break, upper bound
	breakTicks          uint64  // Break duration
	buyers              int     // Number of withdrawal agents
	buyerDelay          float64 // Mean inter-purchase delay
	buyerFixed          bool    // One fixed field per buyer instead of random fields
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "farm-sim",
	Short: "Concurrent producer/consumer farm simulation on a virtual clock",
}

// runCmd executes the simulation using parameters from the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the farm simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		out := cmd.OutOrStdout()
		var recorders []trace.Recorder
		if !quiet {
			recorders = append(recorders, trace.NewLogRecorder(out))
		}
		var events *trace.Memory
		if summary {
			events = trace.NewMemory()
			recorders = append(recorders, events)
		}
		s, err := sim.NewSimulation(cfg, trace.Multi(recorders...))
		if err != nil {
			logrus.Fatalf("Unable to build simulation: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		startTime := time.Now()
		report, err := s.Run(ctx)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		report.Print(out)
		if events != nil {
			trace.Summarize(events.Events()).Print(out)
		}

		if metricsOut != "" {
			if err := sim.WriteMetricsTextfile(metricsOut, s.Collector()); err != nil {
				logrus.Fatalf("Unable to write metrics to %s: %v", metricsOut, err)
			}
			logrus.Debugf("Wrote metrics to '%s'", metricsOut)
		}

		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	d := sim.DefaultConfig()

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML config file (flags override its values)")
	runCmd.Flags().Int64Var(&seed, "seed", d.Seed, "Seed for random deliveries, breaks and purchases")
	runCmd.Flags().Uint64Var(&horizon, "horizon", d.Clock.HorizonTicks, "Total simulation horizon (in ticks, 0 = until interrupted)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress per-event output lines")
	runCmd.Flags().BoolVar(&summary, "summary", false, "Print an event summary after the report")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write final prometheus metrics to this textfile")

	// Clock and stores
	runCmd.Flags().IntVar(&tickMs, "tick-ms", d.Clock.TickIntervalMs, "Wall-clock milliseconds per tick")
	runCmd.Flags().IntVar(&penCapacity, "pen-capacity", d.Farm.PenCapacity, "Capacity of each field")
	runCmd.Flags().IntVar(&initialPerPen, "initial-per-pen", d.Farm.InitialPerPen, "Animals placed in each field at start")

	// Deliveries
	runCmd.Flags().IntVar(&batchSize, "delivery-size", d.Delivery.BatchSize, "Animals per delivery")
	runCmd.Flags().Uint64Var(&deliveryInterval, "delivery-interval", d.Delivery.IntervalTicks, "Deliver every N ticks (0 = off)")
	runCmd.Flags().Float64Var(&deliveryProbability, "delivery-probability", d.Delivery.Probability, "Per-tick delivery probability (0 = off)")

	// Farmers
	runCmd.Flags().IntVar(&farmers, "farmers", d.Transfer.Agents, "Number of farmers")
	runCmd.Flags().IntVar(&farmerBatch, "farmer-batch", d.Transfer.BatchCap, "Max animals a farmer carries per trip")
	runCmd.Flags().Uint64Var(&travelTicks, "travel-ticks", d.Transfer.BaseTravelTicks, "Base ticks to reach a field")
	runCmd.Flags().Uint64Var(&returnTicks, "return-ticks", d.Transfer.ReturnTicks, "Ticks to return to the enclosure")
	runCmd.Flags().Uint64Var(&breakMin, "break-min", d.Transfer.BreakMinTicks, "Minimum work ticks before a break")
	runCmd.Flags().Uint64Var(&breakMax, "break-max", d.Transfer.BreakMaxTicks, "Maximum work ticks before a break")
	runCmd.Flags().Uint64Var(&breakTicks, "break-ticks", d.Transfer.BreakTicks, "Break duration in ticks (0 = no breaks)")

	// Buyers
	runCmd.Flags().IntVar(&buyers, "buyers", d.Withdrawal.Agents, "Number of buyers")
	runCmd.Flags().Float64Var(&buyerDelay, "buyer-delay", d.Withdrawal.MeanDelayTicks, "Mean ticks between purchases")
	runCmd.Flags().BoolVar(&buyerFixed, "buyer-fixed", d.Withdrawal.FixedCategory, "Assign each buyer one fixed field")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
