package buffer

import (
	"fmt"
	"math"
)

// Stats is a set of statistical properties of a (weighted) set of numbers.
type Stats struct {
	count          int
	weight         float64
	sum            float64
	min, max       float64
	mean, dSquared float64
}

// NewStats creates a new Stats.
func NewStats() *Stats {
	return &Stats{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

// Push adds another element to the set with unit weight.
func (s *Stats) Push(v float64) {
	s.PushWeighted(v, 1)
}

// PushWeighted adds another element to the set with the given weight.
// Elements with zero weight are counted, but do not affect the moments.
func (s *Stats) PushWeighted(v, w float64) {
	s.count++
	if w <= 0 {
		return
	}
	s.weight += w
	s.sum += w * v
	diff := v - s.mean
	mean := s.mean + (w/s.weight)*diff
	s.dSquared += w * diff * (v - mean)
	s.mean = mean

	if s.min > v {
		s.min = v
	}

	if s.max < v {
		s.max = v
	}
}

// Avg returns the (weighted) average value of the set.
func (s Stats) Avg() float64 {
	return s.mean
}

// Sum returns the weighted sum of the set.
func (s Stats) Sum() float64 {
	return s.sum
}

// Count returns the number of elements.
func (s Stats) Count() int {
	return s.count
}

// Weight returns the total weight of the elements.
func (s Stats) Weight() float64 {
	return s.weight
}

// Min returns the smallest element with a positive weight.
func (s Stats) Min() float64 {
	return s.min
}

// Max returns the largest element with a positive weight.
func (s Stats) Max() float64 {
	return s.max
}

// Variance is the (weighted) population variance of the set.
func (s Stats) Variance() float64 {
	if s.weight == 0 {
		return 0
	}
	return s.dSquared / s.weight
}

// StDev is the standard deviation of the set.
func (s Stats) StDev() float64 {
	return math.Sqrt(s.Variance())
}

// StatsCollector is a collection of Stats variables.
// This enabled multi-dimensional tracking.
type StatsCollector struct {
	dim   int
	stats []*Stats
}

// NewStatsCollector creates a new Stats collector.
func NewStatsCollector(dim int) *StatsCollector {
	stats := make([]*Stats, dim)
	for i := 0; i < dim; i++ {
		stats[i] = NewStats()
	}
	return &StatsCollector{
		dim:   dim,
		stats: stats,
	}
}

// Push pushes each value to the corresponding dimension.
func (sc *StatsCollector) Push(v ...float64) {
	sc.PushWeighted(1, v...)
}

// PushWeighted pushes each value to the corresponding dimension with the same weight.
func (sc *StatsCollector) PushWeighted(w float64, v ...float64) {
	if len(v) != sc.dim {
		panic(fmt.Sprintf("inconsistent dimensions %d vs %d", len(v), sc.dim))
	}
	for i := 0; i < len(sc.stats); i++ {
		sc.stats[i].PushWeighted(v[i], w)
	}
}

func (sc StatsCollector) Stats() []*Stats {
	return sc.stats
}

// Dim returns the dimensions of the collector.
func (sc StatsCollector) Dim() int {
	return sc.dim
}

// Size returns the number of elements pushed.
func (sc *StatsCollector) Size() int {
	if sc.dim == 0 {
		return 0
	}
	// we expect all buffer to have the same size
	return sc.stats[0].count
}

// Weight returns the total weight pushed.
func (sc *StatsCollector) Weight() float64 {
	if sc.dim == 0 {
		return 0
	}
	return sc.stats[0].weight
}

// Avg returns the average for each dimension.
func (sc StatsCollector) Avg() []float64 {
	avg := make([]float64, sc.dim)
	for i, s := range sc.stats {
		avg[i] = s.Avg()
	}
	return avg
}

// Variance returns the variance for each dimension.
func (sc StatsCollector) Variance() []float64 {
	variance := make([]float64, sc.dim)
	for i, s := range sc.stats {
		variance[i] = s.Variance()
	}
	return variance
}
