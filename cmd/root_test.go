package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/inference-sim/farm-sim/sim"
)

// resetRunFlags restores every run flag to its default once the test ends.
func resetRunFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		runCmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	})
}

func setFlags(t *testing.T, kv ...string) {
	t.Helper()
	for i := 0; i+1 < len(kv); i += 2 {
		require.NoError(t, runCmd.Flags().Set(kv[i], kv[i+1]))
	}
}

func TestResolveConfig_DefaultsWithoutFileOrFlags(t *testing.T) {
	resetRunFlags(t)

	cfg, err := resolveConfig(runCmd)

	require.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
}

func TestResolveConfig_FlagsOverrideFileOnlyWhenSet(t *testing.T) {
	resetRunFlags(t)

	// GIVEN a config file setting farmers, capacity and seed
	path := filepath.Join(t.TempDir(), "farm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: 9
farm:
  pen_capacity: 20
transfer:
  agents: 2
`), 0o644))

	// WHEN only --config and --farmers are given
	setFlags(t, "config", path, "farmers", "4")
	cfg, err := resolveConfig(runCmd)

	// THEN the explicit flag wins and untouched flags keep the file's values
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Transfer.Agents)
	assert.Equal(t, 20, cfg.Farm.PenCapacity)
	assert.Equal(t, int64(9), cfg.Seed)
}

func TestResolveConfig_FlagsApplied(t *testing.T) {
	resetRunFlags(t)

	setFlags(t,
		"horizon", "50",
		"tick-ms", "5",
		"delivery-interval", "7",
		"delivery-probability", "0",
		"break-ticks", "0",
		"buyers", "3",
		"buyer-fixed", "false",
	)
	cfg, err := resolveConfig(runCmd)

	require.NoError(t, err)
	assert.Equal(t, uint64(50), cfg.Clock.HorizonTicks)
	assert.Equal(t, 5, cfg.Clock.TickIntervalMs)
	assert.Equal(t, uint64(7), cfg.Delivery.IntervalTicks)
	assert.Zero(t, cfg.Delivery.Probability)
	assert.Zero(t, cfg.Transfer.BreakTicks)
	assert.Equal(t, 3, cfg.Withdrawal.Agents)
	assert.False(t, cfg.Withdrawal.FixedCategory)
}

func TestResolveConfig_InvalidValueRejected(t *testing.T) {
	resetRunFlags(t)

	setFlags(t, "pen-capacity", "0")
	_, err := resolveConfig(runCmd)

	assert.ErrorIs(t, err, sim.ErrInvalidConfig)
}

func TestResolveConfig_BadConfigFile(t *testing.T) {
	resetRunFlags(t)

	path := filepath.Join(t.TempDir(), "farm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("farmers: 3\n"), 0o644))
	setFlags(t, "config", path)

	_, err := resolveConfig(runCmd)
	assert.Error(t, err)
}

func TestRunCommand_WritesMetricsTextfile(t *testing.T) {
	resetRunFlags(t)

	// GIVEN a short quiet run with a metrics output path
	out := filepath.Join(t.TempDir(), "farm.prom")
	rootCmd.SetArgs([]string{"run", "--quiet", "--horizon", "20", "--tick-ms", "1",
		"--delivery-interval", "5", "--metrics-out", out})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	// WHEN the command executes
	require.NoError(t, rootCmd.Execute())

	// THEN the textfile has the final tick
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "farm_tick 20")
}

func TestRunCommand_SummaryPrintedAfterReport(t *testing.T) {
	resetRunFlags(t)

	// GIVEN a short quiet run asking for an event summary
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"run", "--quiet", "--summary", "--horizon", "10", "--tick-ms", "1",
		"--delivery-interval", "2", "--delivery-probability", "0"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	// WHEN the command executes
	require.NoError(t, rootCmd.Execute())

	// THEN the summary follows the report and counts every interval delivery
	out := buf.String()
	report := strings.Index(out, "=== Farm Simulation Report ===")
	events := strings.Index(out, "=== Event Summary ===")
	require.GreaterOrEqual(t, report, 0)
	require.Greater(t, events, report)
	assert.Contains(t, out, "Deliveries           : 5 (50 units)")
}
