package buffer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_Push(t *testing.T) {

	l := 1001

	type test struct {
		transform func(i int) float64
		avg       float64
		count     int
		stDev     float64
		variance  float64
		sum       float64
	}

	tests := map[string]test{
		"monotonically-increasing-+": {
			transform: func(i int) float64 {
				return float64(i)
			},
			avg:      float64(l / 2),
			count:    l,
			sum:      float64(l) * 500,
			stDev:    289,
			variance: 83500,
		},
		"monotonically-increasing-0": {
			transform: func(i int) float64 {
				return float64(-1*l/2) + float64(i)
			},
			avg:   0,
			count: l,
			sum:   0,
			// NOTE : these are the same as the one above
			stDev:    289,
			variance: 83500,
		},
		"monotonically-increasing--": {
			transform: func(i int) float64 {
				return (-1*float64(l) + 1) + float64(i)
			},
			avg:   -1 * float64(l/2),
			count: l,
			sum:   -1 * float64(l) * 500,
			// NOTE : these are the same as the one above
			stDev:    289,
			variance: 83500,
		},
		"monotonically-decreasing-+": {
			transform: func(i int) float64 {
				return float64(l) - float64(i)
			},
			avg:   float64((l + 1) / 2),
			count: l,
			sum:   float64(l) * 501,
			// NOTE : these are the same as for the increasing case
			stDev:    289,
			variance: 83500,
		},
		"monotonically-decreasing-0": {
			transform: func(i int) float64 {
				return float64(l/2) - float64(i)
			},
			avg:   0,
			count: l,
			sum:   0,
			// NOTE : these are the same as for the increasing case
			stDev:    289,
			variance: 83500,
		},
		"monotonically-decreasing--": {
			transform: func(i int) float64 {
				return -1 * float64(i)
			},
			avg:   -1 * float64(l/2),
			count: l,
			sum:   -1 * float64(l) * 500,
			// NOTE : these are the same as the one above
			stDev:    289,
			variance: 83500,
		},
		"abs-+": {
			transform: func(i int) float64 {
				return math.Abs(-1*float64(l/2) + float64(i))
			},
			avg:   float64(l / 4),
			count: l,
			sum:   250500,
			// NOTE : these are half of the monotonical case
			stDev:    289 / 2,
			variance: 83500 / 4,
		},
		"abs--": {
			transform: func(i int) float64 {
				return -1 * math.Abs(-1*float64(l/2)+float64(i))
			},
			avg:   -1 * float64(l/4),
			count: l,
			sum:   -250500,
			// NOTE : these are half of the monotonical case
			stDev:    289 / 2,
			variance: 83500 / 4,
		},
		"sin": {
			transform: func(i int) float64 {
				return float64(l) * math.Sin(float64(i))
			},
			avg:      1, // very close to the expected '0' anyway
			count:    l,
			sum:      815,
			stDev:    708,    // NOTE : how much larger this is now
			variance: 500692, // NOTE : how much larger this is now
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stats := NewStats()
			for i := 0; i < l; i++ {
				v := tt.transform(i)
				stats.Push(v)
			}
			assert.Equal(t, tt.avg, math.Round(stats.Avg()))
			assert.Equal(t, tt.count, stats.Count())
			assert.Equal(t, tt.sum, math.Round(stats.Sum()))
			assert.Equal(t, tt.stDev, math.Round(stats.StDev()))
			assert.Equal(t, tt.variance, math.Round(stats.Variance()))
		})
	}
}

func TestStats_PushWeighted(t *testing.T) {

	type test struct {
		values   []float64
		weights  []float64
		avg      float64
		variance float64
		weight   float64
		sum      float64
		min, max float64
	}

	tests := map[string]test{
		"unit-weights": {
			values:   []float64{1, 2, 3},
			weights:  []float64{1, 1, 1},
			avg:      2,
			variance: 2.0 / 3.0,
			weight:   3,
			sum:      6,
			min:      1,
			max:      3,
		},
		"zero-weight-ignored": {
			values:   []float64{1, 100, 3},
			weights:  []float64{1, 0, 1},
			avg:      2,
			variance: 1,
			weight:   2,
			sum:      4,
			min:      1,
			max:      3,
		},
		"skewed": {
			values:   []float64{0, 10},
			weights:  []float64{3, 1},
			avg:      2.5,
			variance: 18.75,
			weight:   4,
			sum:      10,
			min:      0,
			max:      10,
		},
		"fractional": {
			values:   []float64{0, 10},
			weights:  []float64{0.25, 0.25},
			avg:      5,
			variance: 25,
			weight:   0.5,
			sum:      2.5,
			min:      0,
			max:      10,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stats := NewStats()
			for i, v := range tt.values {
				stats.PushWeighted(v, tt.weights[i])
			}
			assert.Equal(t, len(tt.values), stats.Count())
			assert.InDelta(t, tt.avg, stats.Avg(), 1e-12)
			assert.InDelta(t, tt.variance, stats.Variance(), 1e-12)
			assert.InDelta(t, math.Sqrt(tt.variance), stats.StDev(), 1e-12)
			assert.InDelta(t, tt.weight, stats.Weight(), 1e-12)
			assert.InDelta(t, tt.sum, stats.Sum(), 1e-12)
			assert.Equal(t, tt.min, stats.Min())
			assert.Equal(t, tt.max, stats.Max())
		})
	}
}

func TestStats_Empty(t *testing.T) {
	stats := NewStats()
	stats.PushWeighted(5, 0)
	assert.Equal(t, 1, stats.Count())
	assert.Equal(t, 0.0, stats.Weight())
	assert.Equal(t, 0.0, stats.Avg())
	assert.Equal(t, 0.0, stats.Variance())
}

func TestStatsCollector(t *testing.T) {
	sc := NewStatsCollector(2)
	sc.Push(1, 10)
	sc.PushWeighted(3, 5, 20)
	assert.Equal(t, 2, sc.Size())
	assert.Equal(t, 2, sc.Dim())
	assert.Equal(t, 4.0, sc.Weight())
	assert.InDeltaSlice(t, []float64{4, 17.5}, sc.Avg(), 1e-12)
	assert.InDeltaSlice(t, []float64{3, 18.75}, sc.Variance(), 1e-12)
	assert.Len(t, sc.Stats(), 2)

	assert.Panics(t, func() {
		sc.Push(1)
	})
}
