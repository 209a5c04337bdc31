package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

const job = "clust"

// Observer is the process wide metrics instance.
var Observer = NewMetrics()

// Fit summarises a single fit for the metrics.
type Fit struct {
	Iterations int
	Converged  bool
	Collapsed  int
	MSE        float64
}

type Metrics struct {
	mutex      *sync.RWMutex
	registry   *prometheus.Registry
	prometheus Prometheus
}

// NewMetrics creates a metrics instance backed by its own registry.
func NewMetrics() *Metrics {
	p := NewPrometheusMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(p.collectors()...)
	return &Metrics{
		mutex:      new(sync.RWMutex),
		registry:   registry,
		prometheus: p,
	}
}

// Prometheus exposes the underlying collectors.
func (m *Metrics) Prometheus() Prometheus {
	return m.prometheus
}

// Registry returns the registry the collectors are registered to.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFit records the outcome of fitting one category.
func (m *Metrics) ObserveFit(algorithm, category string, fit Fit) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.prometheus.Iterations.WithLabelValues(algorithm, category).Set(float64(fit.Iterations))
	m.prometheus.Converged.WithLabelValues(algorithm, category).Set(bool2float(fit.Converged))
	m.prometheus.Collapsed.WithLabelValues(algorithm, category).Set(float64(fit.Collapsed))
	m.prometheus.MSE.WithLabelValues(algorithm, category).Set(fit.MSE)
}

// ObserveAccuracy records the evaluation accuracy of one category.
func (m *Metrics) ObserveAccuracy(algorithm, category string, accuracy float64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.prometheus.Accuracy.WithLabelValues(algorithm, category).Set(accuracy)
}

// Increment counts a completed run.
func (m *Metrics) Increment(algorithm string) {
	m.prometheus.Runs.WithLabelValues(algorithm).Inc()
}

// Push sends the current values to the push gateway at url.
func (m *Metrics) Push(url string, run string) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	err := push.New(url, job).
		Gatherer(m.registry).
		Grouping("run", run).
		Push()
	if err != nil {
		return fmt.Errorf("could not push metrics to '%s': %w", url, err)
	}
	log.Debug().Str("url", url).Str("run", run).Msg("pushed metrics")
	return nil
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func bool2float(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
