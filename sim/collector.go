package sim

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "farm"

// Collector exposes a running simulation's counters and store sizes as
// prometheus metrics. Values are read at scrape time.
type Collector struct {
	clock   *Clock
	farm    *Farm
	metrics *Metrics

	tick       *prometheus.Desc
	deliveries *prometheus.Desc
	delivered  *prometheus.Desc
	stocked    *prometheus.Desc
	rejected   *prometheus.Desc
	sold       *prometheus.Desc
	breaks     *prometheus.Desc
	inTransit  *prometheus.Desc
	intake     *prometheus.Desc
	pen        *prometheus.Desc
}

// NewCollector creates a collector over the given stores and counters.
func NewCollector(clock *Clock, farm *Farm, m *Metrics) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "", name), help, labels, nil)
	}
	return &Collector{
		clock:      clock,
		farm:       farm,
		metrics:    m,
		tick:       desc("tick", "Current virtual clock tick."),
		deliveries: desc("deliveries_total", "Delivery batches deposited into the intake buffer."),
		delivered:  desc("units_delivered_total", "Units created by the delivery producer."),
		stocked:    desc("units_stocked_total", "Units placed into pens by transfer agents."),
		rejected:   desc("stock_rejections_total", "Add calls refused because a pen was full."),
		sold:       desc("units_sold_total", "Units removed from pens by withdrawal agents."),
		breaks:     desc("farmer_breaks_total", "Breaks taken by transfer agents."),
		inTransit:  desc("units_in_transit", "Units carried by transfer agents."),
		intake:     desc("intake_units", "Units waiting in the intake buffer."),
		pen:        desc("pen_units", "Units held in a pen.", "category"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.tick, c.deliveries, c.delivered, c.stocked, c.rejected,
		c.sold, c.breaks, c.inTransit, c.intake, c.pen,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	counter := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	gauge(c.tick, float64(c.clock.Now()))
	counter(c.deliveries, c.metrics.Deliveries.Load())
	counter(c.delivered, c.metrics.Delivered.Load())
	counter(c.stocked, c.metrics.Stocked.Load())
	counter(c.rejected, c.metrics.Rejected.Load())
	counter(c.sold, c.metrics.Sold.Load())
	counter(c.breaks, c.metrics.Breaks.Load())
	gauge(c.inTransit, float64(c.metrics.InTransit.Load()))
	gauge(c.intake, float64(c.farm.Intake().Len()))
	for _, pen := range c.farm.Pens() {
		gauge(c.pen, float64(pen.Size()), string(pen.Category()))
	}
}

// WriteMetricsTextfile gathers the collector into a fresh registry and writes
// it in the prometheus text exposition format.
func WriteMetricsTextfile(path string, c *Collector) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
