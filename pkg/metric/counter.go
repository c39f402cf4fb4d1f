package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric exported by webmenu.
const Namespace = "webmenu"

type IncrementalCounter interface {
	Increment(val ...string)
}

// Discard is an IncrementalCounter that records nothing.
var Discard IncrementalCounter = discard{}

type discard struct{}

func (discard) Increment(...string) {}

type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

// NewCounterWithRegistry registers a namespaced counter vector with reg.
// A nil reg yields Discard.
func NewCounterWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) IncrementalCounter {
	if reg == nil {
		return Discard
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	}, labels)

	reg.MustRegister(counter)

	return &Counter{
		Name: prometheus.BuildFQName(Namespace, "", name),
		Help: help,
		vec:  counter,
	}
}

// GetHandlerForRegistry returns an HTTP handler for serving Prometheus metrics from a custom registry.
func GetHandlerForRegistry(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
