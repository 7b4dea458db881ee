// Package telemetry builds the metrics handle that is passed down to the
// components of a node.
package telemetry

import (
	"strings"
	"time"

	"github.com/armon/go-metrics"
)

const (
	// DefaultInterval is the aggregation interval of the in-memory sink.
	DefaultInterval = 10 * time.Second

	// DefaultRetain is how long the in-memory sink keeps intervals.
	DefaultRetain = time.Minute
)

// Telemetry is a metrics handle, optionally backed by an in-memory sink that
// can be queried.
type Telemetry struct {
	*metrics.Metrics

	name string
	sink *metrics.InmemSink
}

func newConfig(name string) *metrics.Config {
	conf := metrics.DefaultConfig(name)
	conf.EnableHostname = false
	conf.EnableRuntimeMetrics = false
	return conf
}

// NewInmem creates a Telemetry that aggregates metrics in memory.
func NewInmem(name string, interval, retain time.Duration) (*Telemetry, error) {
	sink := metrics.NewInmemSink(interval, retain)

	m, err := metrics.New(newConfig(name), sink)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		Metrics: m,
		name:    name,
		sink:    sink,
	}, nil
}

// NewNoop creates a Telemetry that discards everything.
func NewNoop() *Telemetry {
	m, _ := metrics.New(newConfig("noop"), &metrics.BlackholeSink{})

	return &Telemetry{
		Metrics: m,
		name:    "noop",
	}
}

// Sink returns the in-memory sink, or nil if metrics are discarded.
func (t *Telemetry) Sink() *metrics.InmemSink {
	return t.sink
}

// Counter returns the total of a counter over the retained intervals.
func (t *Telemetry) Counter(key ...string) float64 {
	if t.sink == nil {
		return 0
	}

	flat := t.flatten(key)

	var total float64
	for _, interval := range t.sink.Data() {
		interval.RLock()
		if c, ok := interval.Counters[flat]; ok {
			total += c.Sum
		}
		interval.RUnlock()
	}
	return total
}

// Gauge returns the latest value of a gauge.
func (t *Telemetry) Gauge(key ...string) (float32, bool) {
	if t.sink == nil {
		return 0, false
	}

	flat := t.flatten(key)

	data := t.sink.Data()
	for i := len(data) - 1; i >= 0; i-- {
		data[i].RLock()
		g, ok := data[i].Gauges[flat]
		data[i].RUnlock()
		if ok {
			return g.Value, true
		}
	}
	return 0, false
}

func (t *Telemetry) flatten(key []string) string {
	return strings.Join(append([]string{t.name}, key...), ".")
}
