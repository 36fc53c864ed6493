// Package telemetry exposes serializer metrics. Every instrument is a no-op
// until a Prometheus registerer is supplied.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "datacontract"
	subsystem = "serializer"
)

// Direction labels.
const (
	Write = "write"
	Read  = "read"
)

type Histogram interface {
	Observe(float64)
}

type Counter interface {
	Inc()
	Add(float64)
}

// CounterVec resolves a labeled counter.
type CounterVec interface {
	With(labels ...string) Counter
}

type HistogramVec interface {
	With(labels ...string) Histogram
}

type NoopStat struct{}

func (NoopStat) Observe(float64) {}

func (NoopStat) Inc() {}

func (NoopStat) Add(float64) {}

type noopCounterVec struct{}
type noopHistogramVec struct{}

func (noopCounterVec) With(...string) Counter     { return NoopStat{} }
func (noopHistogramVec) With(...string) Histogram { return NoopStat{} }

type prometheusCounterVec struct {
	vec *prometheus.CounterVec
}

func (p *prometheusCounterVec) With(labelValues ...string) Counter {
	return p.vec.WithLabelValues(labelValues...)
}

type prometheusHistogramVec struct {
	vec *prometheus.HistogramVec
}

func (p *prometheusHistogramVec) With(labelValues ...string) Histogram {
	return p.vec.WithLabelValues(labelValues...)
}

// Metrics groups the serializer instruments.
type Metrics struct {
	// Documents counts completed documents by direction.
	Documents CounterVec
	// Failures counts failed calls by direction and error code.
	Failures CounterVec
	// Items observes the item count of completed documents by direction.
	Items HistogramVec
	// Seconds observes call duration by direction.
	Seconds HistogramVec
}

// Noop returns metrics that record nothing.
func Noop() *Metrics {
	return &Metrics{
		Documents: noopCounterVec{},
		Failures:  noopCounterVec{},
		Items:     noopHistogramVec{},
		Seconds:   noopHistogramVec{},
	}
}

// New registers the serializer instruments with reg. A nil reg yields
// no-op metrics.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return Noop(), nil
	}
	documents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "documents_total",
		Help:      "Documents written or read successfully.",
	}, []string{"direction"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "failures_total",
		Help:      "Failed serializer calls by error code.",
	}, []string{"direction", "code"})
	items := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "items",
		Help:      "Items counted against the quota per document.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"direction"})
	seconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "duration_seconds",
		Help:      "Serializer call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"direction"})
	for _, c := range []prometheus.Collector{documents, failures, items, seconds} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return &Metrics{
		Documents: &prometheusCounterVec{vec: documents},
		Failures:  &prometheusCounterVec{vec: failures},
		Items:     &prometheusHistogramVec{vec: items},
		Seconds:   &prometheusHistogramVec{vec: seconds},
	}, nil
}
