package ml

import (
	"fmt"

	"github.com/drakos74/clust/internal/math"
)

// Metadata describes the outcome of a fit.
type Metadata struct {
	Samples    int
	Iterations int
	Converged  bool
	Summary    []Cluster
	// Loss tracks the objective at every iteration.
	// For k-means this is the within-cluster squared error,
	// for autoclass the total log-likelihood.
	Loss []float64
	MSE  float64
}

// NewMetadata creates an empty metadata for the given number of samples.
func NewMetadata(samples int) Metadata {
	return Metadata{
		Samples: samples,
		Summary: make([]Cluster, 0),
		Loss:    make([]float64, 0),
	}
}

// Cluster summarises a cluster.
type Cluster struct {
	Size      int
	Prototype math.Vector
}

func summarise(clusters [][]math.Vector, prototypes []math.Vector) []Cluster {
	cc := make([]Cluster, len(clusters))
	for k, c := range clusters {
		cc[k] = Cluster{
			Size:      len(c),
			Prototype: prototypes[k],
		}
	}
	return cc
}

// dimension checks that the examples share the same non-zero dimension.
func dimension(examples []math.Vector) (int, error) {
	if len(examples) == 0 {
		return 0, NewConfigurationError("examples", ErrNoExamples, "")
	}
	dim := len(examples[0])
	if dim == 0 {
		return 0, NewConfigurationError("examples", ErrInvalidDimension, "zero dimension")
	}
	for i, x := range examples {
		if len(x) != dim {
			return 0, NewConfigurationError("examples", ErrInvalidDimension, "example %d has %d attributes instead of %d", i, len(x), dim)
		}
	}
	return dim, nil
}

// group collects the examples into clusters based on their assignments.
func group(examples []math.Vector, assignments []int, k int) [][]math.Vector {
	clusters := make([][]math.Vector, k)
	for k := range clusters {
		clusters[k] = make([]math.Vector, 0)
	}
	for i, c := range assignments {
		clusters[c] = append(clusters[c], examples[i])
	}
	return clusters
}

// MeanSquaredError computes the squared distance of every example from its cluster mean,
// averaged over all examples.
func MeanSquaredError(clusters [][]math.Vector) float64 {
	var n int
	var sse float64
	for _, c := range clusters {
		mean := math.Mean(c)
		for _, x := range c {
			d, err := math.SquareDistance(x, mean)
			if err != nil {
				panic(fmt.Sprintf("inconsistent cluster: %v", err))
			}
			sse += d
		}
		n += len(c)
	}
	if n == 0 {
		return 0
	}
	return sse / float64(n)
}
