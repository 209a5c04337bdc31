package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "clust"

type Prometheus struct {
	Runs       *prometheus.CounterVec
	Iterations *prometheus.GaugeVec
	Converged  *prometheus.GaugeVec
	Collapsed  *prometheus.GaugeVec
	MSE        *prometheus.GaugeVec
	Accuracy   *prometheus.GaugeVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "number of completed clustering runs",
			}, []string{"algorithm"}),
		Iterations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "iterations",
				Help:      "iterations of the last fit",
			}, []string{"algorithm", "category"}),
		Converged: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "converged",
				Help:      "1 if the last fit converged",
			}, []string{"algorithm", "category"}),
		Collapsed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "collapsed_clusters",
				Help:      "clusters without support at the end of the last fit",
			}, []string{"algorithm", "category"}),
		MSE: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mse",
				Help:      "mean squared error of the last fit",
			}, []string{"algorithm", "category"}),
		Accuracy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "accuracy",
				Help:      "fraction of correctly classified test examples",
			}, []string{"algorithm", "category"}),
	}
}

func (p Prometheus) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.Runs,
		p.Iterations,
		p.Converged,
		p.Collapsed,
		p.MSE,
		p.Accuracy,
	}
}
