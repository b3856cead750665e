package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCollectorFixture(t *testing.T) (*Collector, *Farm, *Metrics) {
	t.Helper()
	farm, err := NewFarm(FarmConfig{PenCapacity: 5})
	require.NoError(t, err)
	m := &Metrics{}
	return NewCollector(newTestClock(t), farm, m), farm, m
}

func TestCollector_ExposesEveryMetric(t *testing.T) {
	c, _, _ := newCollectorFixture(t)
	// nine scalar series plus one per pen
	assert.Equal(t, 9+len(Categories()), testutil.CollectAndCount(c))
}

func TestCollector_ReadsLiveValues(t *testing.T) {
	// GIVEN three sales and two cows in the pen
	c, farm, m := newCollectorFixture(t)
	m.Sold.Add(3)
	require.True(t, farm.Pen(Cows).Add(Unit{ID: 1, Category: Cows}))
	require.True(t, farm.Pen(Cows).Add(Unit{ID: 2, Category: Cows}))

	// THEN the scrape reflects them
	expected := `
# HELP farm_units_sold_total Units removed from pens by withdrawal agents.
# TYPE farm_units_sold_total counter
farm_units_sold_total 3
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "farm_units_sold_total"))

	pens := `
# HELP farm_pen_units Units held in a pen.
# TYPE farm_pen_units gauge
farm_pen_units{category="chickens"} 0
farm_pen_units{category="cows"} 2
farm_pen_units{category="llamas"} 0
farm_pen_units{category="pigs"} 0
farm_pen_units{category="sheep"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(pens), "farm_pen_units"))
}

func TestWriteMetricsTextfile(t *testing.T) {
	c, _, m := newCollectorFixture(t)
	m.Deliveries.Add(4)
	path := filepath.Join(t.TempDir(), "farm.prom")

	require.NoError(t, WriteMetricsTextfile(path, c))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "farm_deliveries_total 4")
	assert.Contains(t, string(data), `farm_pen_units{category="llamas"} 0`)
}

