package math

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrDimensionMismatch is returned when two vectors do not share the same dimension.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Vector is a fixed length feature vector.
// Vectors are treated as immutable once created.
type Vector []float64

// Dim returns the dimension of the vector.
func (v Vector) Dim() int {
	return len(v)
}

// Copy returns a copy of the vector.
func (v Vector) Copy() Vector {
	if v == nil {
		return nil
	}
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Equal reports whether the two vectors are element-wise identical.
func (v Vector) Equal(w Vector) bool {
	return len(v) == len(w) && floats.Equal(v, w)
}

// SquareDistance computes the squared euclidean distance between two vectors.
func SquareDistance(x, y Vector) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%d vs %d: %w", len(x), len(y), ErrDimensionMismatch)
	}
	if len(x) == 0 {
		return 0, nil
	}
	diff := make([]float64, len(x))
	floats.SubTo(diff, x, y)
	return floats.Dot(diff, diff), nil
}

// Mean computes the element-wise arithmetic mean of the given vectors.
// It returns nil for an empty collection.
// NOTE : vectors are expected to share the same dimension.
func Mean(vv []Vector) Vector {
	if len(vv) == 0 {
		return nil
	}
	mean := make(Vector, len(vv[0]))
	column := make([]float64, len(vv))
	for d := range mean {
		for i, v := range vv {
			column[i] = v[d]
		}
		mean[d] = stat.Mean(column, nil)
	}
	return mean
}

// Variance computes the element-wise population variance of the given vectors,
// e.g. the mean of the squared deviation from the Mean.
// It returns nil for an empty collection.
func Variance(vv []Vector) Vector {
	if len(vv) == 0 {
		return nil
	}
	variance := make(Vector, len(vv[0]))
	column := make([]float64, len(vv))
	for d := range variance {
		for i, v := range vv {
			column[i] = v[d]
		}
		_, variance[d] = stat.PopMeanVariance(column, nil)
	}
	return variance
}

// StdDev is the element-wise standard deviation of the given vectors.
func StdDev(vv []Vector) Vector {
	variance := Variance(vv)
	if variance == nil {
		return nil
	}
	for d, v := range variance {
		variance[d] = math.Sqrt(v)
	}
	return variance
}

// LogSumExp computes log(exp(v_1) + ... + exp(v_n)) given the logs v_j,
// shifting by the maximum to avoid underflow.
// It returns -Inf for an empty slice.
func LogSumExp(v []float64) float64 {
	if len(v) == 0 {
		return math.Inf(-1)
	}
	return floats.LogSumExp(v)
}
