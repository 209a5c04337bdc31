package ml

import (
	"fmt"

	"github.com/drakos74/clust/internal/math"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// KMeans clusters vectors with Lloyd's algorithm.
type KMeans struct {
	k             int
	maxIterations int
	rnd           *rand.Rand
}

// NewKMeans creates a new k-means engine for k clusters.
func NewKMeans(k int, opts ...Option) *KMeans {
	o := newOptions(DefaultKMeansIterations, opts...)
	return &KMeans{
		k:             k,
		maxIterations: o.maxIterations,
		rnd:           o.random(),
	}
}

// KMeansResult is the outcome of a k-means fit.
type KMeansResult struct {
	Metadata
	Prototypes  []math.Vector
	Clusters    [][]math.Vector
	Assignments []int
}

// Fit clusters the examples.
// The loop stops when an iteration leaves every assignment unchanged,
// or when the iteration ceiling is reached, in which case the result is not Converged.
func (km *KMeans) Fit(examples []math.Vector) (*KMeansResult, error) {
	if km.k <= 0 {
		return nil, NewConfigurationError("k", ErrInvalidK, "got %d", km.k)
	}
	if _, err := dimension(examples); err != nil {
		return nil, err
	}

	n := len(examples)
	prototypes := make([]math.Vector, km.k)
	for c := range prototypes {
		prototypes[c] = km.sample(examples)
	}

	result := &KMeansResult{Metadata: NewMetadata(n)}

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	var clusters [][]math.Vector
	for iteration := 1; iteration <= km.maxIterations; iteration++ {
		next, sse, err := assign(examples, prototypes)
		if err != nil {
			return nil, fmt.Errorf("could not assign examples: %w", err)
		}
		result.Loss = append(result.Loss, sse)
		result.Iterations = iteration

		converged := sameAssignments(assignments, next)
		assignments = next
		clusters = group(examples, assignments, km.k)

		log.Debug().
			Int("k", km.k).
			Int("iteration", iteration).
			Float64("sse", sse).
			Msg("k-means iteration")

		if converged {
			result.Converged = true
			break
		}

		for c, cluster := range clusters {
			mean := math.Mean(cluster)
			if mean == nil {
				// empty cluster, start over from a random example
				mean = km.sample(examples)
				log.Debug().
					Int("cluster", c).
					Int("iteration", iteration).
					Msg("reseeding empty cluster")
			}
			prototypes[c] = mean
		}
	}

	result.Prototypes = prototypes
	result.Clusters = clusters
	result.Assignments = assignments
	result.MSE = MeanSquaredError(clusters)
	result.Summary = summarise(clusters, prototypes)

	if !result.Converged {
		log.Warn().
			Int("k", km.k).
			Int("iterations", result.Iterations).
			Float64("mse", result.MSE).
			Msg("k-means did not converge")
	} else {
		log.Info().
			Int("k", km.k).
			Int("examples", n).
			Int("iterations", result.Iterations).
			Float64("mse", result.MSE).
			Msg("k-means converged")
	}

	return result, nil
}

func (km *KMeans) sample(examples []math.Vector) math.Vector {
	return examples[km.rnd.Intn(len(examples))].Copy()
}

// assign finds the nearest prototype for each example.
// It returns the assignments and the total squared distance to the assigned prototypes.
func assign(examples []math.Vector, prototypes []math.Vector) ([]int, float64, error) {
	assignments := make([]int, len(examples))
	var sse float64
	for i, x := range examples {
		c, d, err := nearest(x, prototypes)
		if err != nil {
			return nil, 0, err
		}
		assignments[i] = c
		sse += d
	}
	return assignments, sse, nil
}

// nearest returns the index of the closest non-nil prototype and its squared distance.
// Ties resolve to the lowest index.
func nearest(x math.Vector, prototypes []math.Vector) (int, float64, error) {
	index := -1
	var min float64
	for c, p := range prototypes {
		if p == nil {
			continue
		}
		d, err := math.SquareDistance(x, p)
		if err != nil {
			return -1, 0, err
		}
		if index < 0 || d < min {
			index = c
			min = d
		}
	}
	if index < 0 {
		return -1, 0, ErrNoPrototypes
	}
	return index, min, nil
}

func sameAssignments(prev, next []int) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if prev[i] != next[i] {
			return false
		}
	}
	return true
}
