package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/logdeck/internal/logline"
	"github.com/five82/logdeck/internal/state"
)

const namespace = "logdeck"

// Counter is a labelled monotonic counter.
type Counter interface {
	Inc(labels ...string)
}

// Counters are the ingestion counters the gateway increments.
type Counters struct {
	// LinesAccepted is labelled by level.
	LinesAccepted Counter
	// LinesRejected is labelled by reason.
	LinesRejected Counter
}

// PrometheusCounter is a Counter backed by a CounterVec.
type PrometheusCounter struct {
	counter *prometheus.CounterVec
}

// NewPrometheusCounter registers a counter vector named logdeck_<name> on reg.
func NewPrometheusCounter(reg prometheus.Registerer, name, help string, labels []string) *PrometheusCounter {
	c := &PrometheusCounter{
		counter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels),
	}
	reg.MustRegister(c.counter)
	return c
}

// Inc adds one to the series with the given label values.
func (p *PrometheusCounter) Inc(labels ...string) {
	p.counter.WithLabelValues(labels...).Inc()
}

// New registers the ingestion counters on reg.
func New(reg prometheus.Registerer) *Counters {
	return &Counters{
		LinesAccepted: NewPrometheusCounter(reg,
			"lines_accepted_total",
			"Lines stored in the buffer.",
			[]string{"level"},
		),
		LinesRejected: NewPrometheusCounter(reg,
			"lines_rejected_total",
			"Lines dropped at the ingestion boundary.",
			[]string{"reason"},
		),
	}
}

// NewTestCounters returns counters on a private registry.
func NewTestCounters() (*Counters, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return New(reg), reg
}

// Nop discards every increment.
type Nop struct{}

// Inc does nothing.
func (Nop) Inc(...string) {}

// NopCounters returns counters that record nothing.
func NopCounters() *Counters {
	return &Counters{LinesAccepted: Nop{}, LinesRejected: Nop{}}
}

// RegisterStore exposes the store's buffer state as gauges and counters
// sampled at scrape time.
func RegisterStore(reg prometheus.Registerer, store *state.Store) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffer_entries",
			Help:      "Entries currently buffered.",
		}, func() float64 { return float64(store.Stats().Buffered) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffer_capacity",
			Help:      "Maximum number of buffered entries.",
		}, func() float64 { return float64(store.Capacity()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffer_sources",
			Help:      "Distinct sources in the buffer.",
		}, func() float64 { return float64(store.Stats().Sources) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buffer_evicted_total",
			Help:      "Entries evicted to stay within capacity.",
		}, func() float64 { return float64(store.Stats().Evicted) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Change notifications dropped for slow subscribers.",
		}, func() float64 { return float64(store.Stats().Dropped) }),
		&levelCollector{store: store, desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "buffer", "level_entries"),
			"Buffered entries per level.",
			[]string{"level"}, nil,
		)},
	)
}

type levelCollector struct {
	store *state.Store
	desc  *prometheus.Desc
}

func (c *levelCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *levelCollector) Collect(ch chan<- prometheus.Metric) {
	counts := c.store.Stats().Levels
	for _, level := range logline.Levels {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(counts[level]), string(level))
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
