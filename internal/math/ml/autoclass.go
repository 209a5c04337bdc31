package ml

import (
	"fmt"
	"math"

	"github.com/drakos74/clust/internal/buffer"
	clust_math "github.com/drakos74/clust/internal/math"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// CollapseThreshold is the expected cluster size below which a cluster keeps its previous parameters.
const CollapseThreshold = 1e-12

// Autoclass clusters vectors with an EM fit of a bernoulli/gaussian mixture.
type Autoclass struct {
	k       int
	epsilon float64
	kinds   []AttrKind
	options options
}

// NewAutoclass creates a new autoclass engine for k clusters over attributes of the given kinds.
func NewAutoclass(k int, epsilon float64, kinds []AttrKind, opts ...Option) *Autoclass {
	return &Autoclass{
		k:       k,
		epsilon: epsilon,
		kinds:   kinds,
		options: newOptions(DefaultAutoclassIterations, opts...),
	}
}

// AutoclassResult is the outcome of an autoclass fit.
type AutoclassResult struct {
	Metadata
	Model *Mixture
	// Gamma holds the responsibilities of the last E-step.
	Gamma       [][]float64
	Assignments []int
	Clusters    [][]clust_math.Vector
	// Prototypes are the means of the clusters, nil for empty ones.
	Prototypes    []clust_math.Vector
	LogLikelihood float64
	// Collapsed counts the M-steps in which a cluster kept its parameters
	// because it had no responsibility mass left.
	Collapsed int
}

func (ac *Autoclass) validate(examples []clust_math.Vector) error {
	if ac.k <= 0 {
		return NewConfigurationError("k", ErrInvalidK, "got %d", ac.k)
	}
	if !(ac.epsilon > 0) {
		return NewConfigurationError("epsilon", ErrInvalidEpsilon, "got %v", ac.epsilon)
	}
	dim, err := dimension(examples)
	if err != nil {
		return err
	}
	if len(ac.kinds) != dim {
		return NewConfigurationError("attributes", ErrVectorMismatch, "%d kinds for %d attributes", len(ac.kinds), dim)
	}
	for d, kind := range ac.kinds {
		if !kind.Valid() {
			return NewConfigurationError("attributes", ErrAttrKind, "attribute %d is %v", d, kind)
		}
	}
	return nil
}

// Fit runs EM until no prior or parameter moves by epsilon or more,
// or until the iteration ceiling is reached.
func (ac *Autoclass) Fit(examples []clust_math.Vector) (*AutoclassResult, error) {
	if err := ac.validate(examples); err != nil {
		return nil, err
	}

	rnd := ac.options.random()
	model, err := ac.initialize(examples, rnd)
	if err != nil {
		return nil, fmt.Errorf("could not initialize mixture: %w", err)
	}

	n := len(examples)
	result := &AutoclassResult{Metadata: NewMetadata(n)}

	gamma := make([][]float64, n)
	for i := range gamma {
		gamma[i] = make([]float64, ac.k)
	}

	for iteration := 1; iteration <= ac.options.maxIterations; iteration++ {
		ll := expect(model, examples, gamma)
		next, collapsed := maximize(model, examples, gamma, ac.options.minVariance)

		result.Iterations = iteration
		result.LogLikelihood = ll
		result.Loss = append(result.Loss, ll)
		result.Collapsed += len(collapsed)

		for _, k := range collapsed {
			log.Warn().
				Int("cluster", k).
				Int("iteration", iteration).
				Msg("cluster collapsed, keeping previous parameters")
		}

		delta := next.Delta(model)
		converged := delta < ac.epsilon
		model = next

		log.Debug().
			Int("k", ac.k).
			Int("iteration", iteration).
			Float64("log-likelihood", ll).
			Float64("delta", delta).
			Msg("autoclass iteration")

		if ac.options.trace != nil {
			priors := make([]float64, len(model.Priors))
			copy(priors, model.Priors)
			ac.options.trace(Step{
				Iteration:     iteration,
				LogLikelihood: ll,
				Priors:        priors,
				Gamma:         gamma,
			})
		}

		if converged {
			result.Converged = true
			break
		}
	}

	assignments := make([]int, n)
	for i, g := range gamma {
		assignments[i] = argMax(g)
	}
	clusters := group(examples, assignments, ac.k)
	prototypes := make([]clust_math.Vector, ac.k)
	for k, c := range clusters {
		prototypes[k] = clust_math.Mean(c)
	}

	result.Model = model
	result.Gamma = gamma
	result.Assignments = assignments
	result.Clusters = clusters
	result.Prototypes = prototypes
	result.MSE = MeanSquaredError(clusters)
	result.Summary = summarise(clusters, prototypes)

	if !result.Converged {
		log.Warn().
			Int("k", ac.k).
			Int("iterations", result.Iterations).
			Float64("epsilon", ac.epsilon).
			Float64("log-likelihood", result.LogLikelihood).
			Msg("autoclass did not converge")
	} else {
		log.Info().
			Int("k", ac.k).
			Int("examples", n).
			Int("iterations", result.Iterations).
			Float64("log-likelihood", result.LogLikelihood).
			Float64("mse", result.MSE).
			Msg("autoclass converged")
	}

	return result, nil
}

// initialize draws random bernoulli parameters
// and estimates the gaussian ones from a k-means pre-clustering.
func (ac *Autoclass) initialize(examples []clust_math.Vector, rnd *rand.Rand) (*Mixture, error) {
	model := NewMixture(ac.k, ac.kinds)

	var means, variances []clust_math.Vector
	if ac.hasContinuous() {
		km := &KMeans{
			k:             ac.k,
			maxIterations: DefaultKMeansIterations,
			rnd:           rnd,
		}
		seed, err := km.Fit(examples)
		if err != nil {
			return nil, fmt.Errorf("could not pre-cluster examples: %w", err)
		}
		global := clust_math.Mean(examples)
		globalVariance := clust_math.Variance(examples)
		means = make([]clust_math.Vector, ac.k)
		variances = make([]clust_math.Vector, ac.k)
		for k, c := range seed.Clusters {
			means[k] = clust_math.Mean(c)
			variances[k] = clust_math.Variance(c)
			if means[k] == nil {
				means[k] = global
				variances[k] = globalVariance
			}
		}
	}

	for k, component := range model.Components {
		for d, kind := range ac.kinds {
			switch kind {
			case Binary:
				component[d].P = rnd.Float64()
			case Continuous:
				component[d].Mean = means[k][d]
				component[d].Variance = math.Max(variances[k][d], ac.options.minVariance)
			}
		}
	}
	return model, nil
}

func (ac *Autoclass) hasContinuous() bool {
	for _, kind := range ac.kinds {
		if kind == Continuous {
			return true
		}
	}
	return false
}

// expect computes the responsibilities of every cluster for every example into gamma
// and returns the total log-likelihood of the examples.
func expect(model *Mixture, examples []clust_math.Vector, gamma [][]float64) float64 {
	var ll float64
	for i, x := range examples {
		model.LogJoint(x, gamma[i])
		ll += normalize(gamma[i])
	}
	return ll
}

// maximize re-estimates priors and parameters from the responsibilities.
// Clusters without responsibility mass keep their previous parameters and are returned.
func maximize(model *Mixture, examples []clust_math.Vector, gamma [][]float64, minVariance float64) (*Mixture, []int) {
	next := model.Copy()
	n := float64(len(examples))
	dim := model.Dim()
	collapsed := make([]int, 0)

	values := make([]float64, dim)
	for k := range next.Priors {
		stats := buffer.NewStatsCollector(dim)
		for i, x := range examples {
			for d, kind := range model.Kinds {
				values[d] = x[d]
				if kind == Binary {
					values[d] = 0
					if IsTrue(x[d]) {
						values[d] = 1
					}
				}
			}
			stats.PushWeighted(gamma[i][k], values...)
		}

		nk := stats.Weight()
		next.Priors[k] = nk / n
		if nk < CollapseThreshold {
			collapsed = append(collapsed, k)
			continue
		}

		avg := stats.Avg()
		variance := stats.Variance()
		for d, kind := range model.Kinds {
			switch kind {
			case Binary:
				next.Components[k][d].P = avg[d]
			case Continuous:
				next.Components[k][d].Mean = avg[d]
				next.Components[k][d].Variance = math.Max(variance[d], minVariance)
			}
		}
	}
	return next, collapsed
}

// argMax returns the index of the largest value, the lowest index on ties.
func argMax(v []float64) int {
	index := 0
	for k := 1; k < len(v); k++ {
		if v[k] > v[index] {
			index = k
		}
	}
	return index
}
