// Package metrics records connection lifecycle and traffic counters for a
// node. Collectors are called inline on the dispatch path and must be cheap.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector receives runtime events.
type Collector interface {
	ConnectionOpened(role string)
	ConnectionLost(role string)
	MessageReceived(bytes int)
	MessageSent(bytes int)
	CommandDropped(kind string)
}

type noopCollector struct{}

// Noop returns a collector that discards all events.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) ConnectionOpened(string) {}
func (noopCollector) ConnectionLost(string)   {}
func (noopCollector) MessageReceived(int)     {}
func (noopCollector) MessageSent(int)         {}
func (noopCollector) CommandDropped(string)   {}

// PrometheusCollector exposes the events as Prometheus metrics.
type PrometheusCollector struct {
	opened   *prometheus.CounterVec
	lost     *prometheus.CounterVec
	active   prometheus.Gauge
	msgsIn   prometheus.Counter
	msgsOut  prometheus.Counter
	bytesIn  prometheus.Counter
	bytesOut prometheus.Counter
	dropped  *prometheus.CounterVec
}

// NewPrometheusCollector registers the metrics with reg, or with the default
// registerer when reg is nil. Metrics already registered by an earlier
// collector are reused.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{}
	var err error

	if c.opened, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wscat_connections_opened_total",
		Help: "Connections whose handler was constructed, by role.",
	}, []string{"role"})); err != nil {
		return nil, err
	}
	if c.lost, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wscat_connections_lost_total",
		Help: "Connections whose handler was handed back to the factory, by role.",
	}, []string{"role"})); err != nil {
		return nil, err
	}
	if c.active, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wscat_connections_active",
		Help: "Connections with a live handler.",
	})); err != nil {
		return nil, err
	}
	if c.msgsIn, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wscat_messages_received_total",
		Help: "Messages read from peers.",
	})); err != nil {
		return nil, err
	}
	if c.msgsOut, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wscat_messages_sent_total",
		Help: "Messages written to peers.",
	})); err != nil {
		return nil, err
	}
	if c.bytesIn, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wscat_received_bytes_total",
		Help: "Payload bytes read from peers.",
	})); err != nil {
		return nil, err
	}
	if c.bytesOut, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wscat_sent_bytes_total",
		Help: "Payload bytes written to peers.",
	})); err != nil {
		return nil, err
	}
	if c.dropped, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wscat_commands_dropped_total",
		Help: "Outbound commands rejected because a queue was full or closed, by command kind.",
	}, []string{"kind"})); err != nil {
		return nil, err
	}

	return c, nil
}

// register registers col, returning the already registered collector of the
// same type if there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, col C) (C, error) {
	if err := reg.Register(col); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return col, err
	}
	return col, nil
}

func (c *PrometheusCollector) ConnectionOpened(role string) {
	c.opened.WithLabelValues(role).Inc()
	c.active.Inc()
}

func (c *PrometheusCollector) ConnectionLost(role string) {
	c.lost.WithLabelValues(role).Inc()
	c.active.Dec()
}

func (c *PrometheusCollector) MessageReceived(bytes int) {
	c.msgsIn.Inc()
	c.bytesIn.Add(float64(bytes))
}

func (c *PrometheusCollector) MessageSent(bytes int) {
	c.msgsOut.Inc()
	c.bytesOut.Add(float64(bytes))
}

func (c *PrometheusCollector) CommandDropped(kind string) {
	c.dropped.WithLabelValues(kind).Inc()
}
