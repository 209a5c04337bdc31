package ml

import (
	"golang.org/x/exp/rand"
)

const (
	// DefaultKMeansIterations is the iteration ceiling for k-means.
	DefaultKMeansIterations = 1000
	// DefaultAutoclassIterations is the iteration ceiling for the autoclass EM loop.
	DefaultAutoclassIterations = 10000
	// DefaultMinVariance is the lowest variance a gaussian attribute can take.
	DefaultMinVariance = 1e-6
)

// Step is the state of the EM loop after one iteration.
type Step struct {
	Iteration     int
	LogLikelihood float64
	// Priors are the re-estimated cluster priors.
	Priors []float64
	// Gamma are the responsibilities computed during the iteration.
	// It is only valid for the duration of the callback.
	Gamma [][]float64
}

type options struct {
	seed          uint64
	src           rand.Source
	maxIterations int
	minVariance   float64
	trace         func(step Step)
}

// Option configures a clustering engine.
type Option func(o *options)

// WithSeed seeds the random generator of the engine.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithSource sets the random source of the engine.
// It takes precedence over WithSeed.
func WithSource(src rand.Source) Option {
	return func(o *options) {
		o.src = src
	}
}

// WithMaxIterations sets the iteration ceiling.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithMinVariance sets the variance floor for gaussian attributes.
func WithMinVariance(v float64) Option {
	return func(o *options) {
		o.minVariance = v
	}
}

// WithTrace registers a callback invoked at the end of every EM iteration.
func WithTrace(trace func(step Step)) Option {
	return func(o *options) {
		o.trace = trace
	}
}

func newOptions(maxIterations int, opts ...Option) options {
	o := options{
		maxIterations: maxIterations,
		minVariance:   DefaultMinVariance,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxIterations <= 0 {
		o.maxIterations = maxIterations
	}
	if o.minVariance <= 0 {
		o.minVariance = DefaultMinVariance
	}
	return o
}

func (o options) random() *rand.Rand {
	if o.src != nil {
		return rand.New(o.src)
	}
	return rand.New(rand.NewSource(o.seed))
}
