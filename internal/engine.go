package clust

import (
	"fmt"
	"io"
	"time"

	"github.com/drakos74/clust/infra/config"
	clust_math "github.com/drakos74/clust/internal/math"
	"github.com/drakos74/clust/internal/math/ml"
	"github.com/drakos74/clust/internal/metrics"
	"github.com/drakos74/clust/internal/model"
	"github.com/drakos74/clust/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Fit summarises the clustering of one category.
type Fit struct {
	Category      string       `json:"category"`
	K             int          `json:"k"`
	Samples       int          `json:"samples"`
	Iterations    int          `json:"iterations"`
	Converged     bool         `json:"converged"`
	MSE           float64      `json:"mse"`
	Loss          []float64    `json:"loss"`
	Clusters      []ml.Cluster `json:"clusters"`
	Priors        []float64    `json:"priors,omitempty"`
	LogLikelihood float64      `json:"log_likelihood,omitempty"`
	Collapsed     int          `json:"collapsed,omitempty"`
}

// Report is the outcome of a run.
type Report struct {
	RunID      string    `json:"run_id"`
	Algorithm  string    `json:"algorithm"`
	Time       time.Time `json:"time"`
	Fits       []Fit     `json:"fits"`
	Evaluation ml.Report `json:"evaluation"`
}

// Engine trains one model per category and evaluates them against each other.
type Engine struct {
	cfg     config.Config
	store   storage.Persistence
	metrics *metrics.Metrics
	raw     io.Writer
}

// EngineOption configures the engine.
type EngineOption func(e *Engine)

// WithStorage sets the storage the reports are persisted to.
func WithStorage(store storage.Persistence) EngineOption {
	return func(e *Engine) {
		e.store = store
	}
}

// WithMetrics sets the metrics the runs are recorded in.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithRawOutput sets the writer the per iteration objective is printed to,
// if the config asks for raw output.
func WithRawOutput(w io.Writer) EngineOption {
	return func(e *Engine) {
		e.raw = w
	}
}

// NewEngine creates a new engine for a validated config.
func NewEngine(cfg config.Config, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		store:   storage.NewVoidStorage(),
		metrics: metrics.Observer,
		raw:     io.Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run fits every category of train and evaluates the fitted models on test.
func (e *Engine) Run(train, test model.Dataset) (*Report, error) {
	if e.cfg.Samples != nil {
		train = train.Average(config.SampleSize, e.cfg.Samples[0])
		test = test.Average(config.SampleSize, e.cfg.Samples[1])
	}

	if err := e.validate(train); err != nil {
		log.Error().Err(err).Str("algorithm", e.cfg.Algorithm).Msg("invalid training data")
		return nil, err
	}

	report := &Report{
		RunID:     uuid.New().String(),
		Algorithm: e.cfg.Algorithm,
		Time:      time.Now(),
		Fits:      make([]Fit, 0, len(model.Categories)),
	}

	scorers := make([]ml.Scorer, len(model.Categories))
	for _, c := range model.Categories {
		fit, scorer, err := e.fit(c, train.Of(c))
		if err != nil {
			log.Error().Err(err).Str("category", c.String()).Str("algorithm", e.cfg.Algorithm).Msg("could not fit")
			return nil, fmt.Errorf("could not fit category '%s': %w", c, err)
		}
		e.metrics.ObserveFit(e.cfg.Algorithm, c.String(), metrics.Fit{
			Iterations: fit.Iterations,
			Converged:  fit.Converged,
			Collapsed:  fit.Collapsed,
			MSE:        fit.MSE,
		})
		for k, cluster := range fit.Clusters {
			log.Debug().
				Str("category", c.String()).
				Int("cluster", k).
				Int("size", cluster.Size).
				Strs("prototype", clust_math.FormatVector(cluster.Prototype)).
				Msg("cluster")
		}
		report.Fits = append(report.Fits, fit)
		scorers[c] = scorer
	}

	evaluation, err := ml.Evaluate(scorers, test.Examples)
	if err != nil {
		return nil, fmt.Errorf("could not evaluate: %w", err)
	}
	report.Evaluation = evaluation
	for c, r := range evaluation.Categories {
		e.metrics.ObserveAccuracy(e.cfg.Algorithm, model.Category(c).String(), r.Accuracy)
	}
	e.metrics.Increment(e.cfg.Algorithm)

	log.Info().
		Str("run", report.RunID).
		Str("algorithm", report.Algorithm).
		Int("correct", evaluation.Correct).
		Int("total", evaluation.Total).
		Float64("accuracy", evaluation.Accuracy).
		Msg("evaluated")

	err = e.store.Store(storage.Key{
		Run:   report.RunID,
		Label: report.Algorithm,
	}, report)
	if err != nil {
		return report, fmt.Errorf("could not store report '%s': %w", report.RunID, err)
	}

	if e.cfg.PushGateway != "" {
		if err := e.metrics.Push(e.cfg.PushGateway, report.RunID); err != nil {
			log.Warn().Err(err).Str("run", report.RunID).Msg("could not push metrics")
		}
	}
	return report, nil
}

// validate checks every category against the config before anything is fitted.
func (e *Engine) validate(train model.Dataset) error {
	for _, c := range model.Categories {
		examples := train.Of(c)
		if len(examples) == 0 {
			return ml.NewConfigurationError("examples", ml.ErrNoExamples, "category '%s'", c)
		}
		if e.cfg.Algorithm == config.Autoclass {
			if _, err := e.cfg.AttrKinds(len(examples[0])); err != nil {
				return fmt.Errorf("category '%s': %w", c, err)
			}
		}
	}
	return nil
}

func (e *Engine) fit(c model.Category, examples []clust_math.Vector) (Fit, ml.Scorer, error) {
	k := e.cfg.K[c]
	opts := []ml.Option{
		ml.WithSeed(e.cfg.Seed + uint64(c)),
		ml.WithMinVariance(e.cfg.MinVariance),
	}

	switch e.cfg.Algorithm {
	case config.KMeans:
		opts = append(opts, ml.WithMaxIterations(e.cfg.MaxIterations.KMeans))
		result, err := ml.NewKMeans(k, opts...).Fit(examples)
		if err != nil {
			return Fit{}, nil, err
		}
		if e.cfg.Raw {
			for i, loss := range result.Loss {
				fmt.Fprintf(e.raw, "%d %f\n", i+1, loss)
			}
		}
		return newFit(c, k, result.Metadata), ml.Prototypes(result.Prototypes), nil
	case config.Autoclass:
		kinds, err := e.cfg.AttrKinds(len(examples[0]))
		if err != nil {
			return Fit{}, nil, err
		}
		opts = append(opts, ml.WithMaxIterations(e.cfg.MaxIterations.Autoclass))
		if e.cfg.Raw {
			opts = append(opts, ml.WithTrace(func(step ml.Step) {
				fmt.Fprintf(e.raw, "%d %f\n", step.Iteration, step.LogLikelihood)
			}))
		}
		result, err := ml.NewAutoclass(k, e.cfg.Epsilon, kinds, opts...).Fit(examples)
		if err != nil {
			return Fit{}, nil, err
		}
		fit := newFit(c, k, result.Metadata)
		fit.Priors = result.Model.Priors
		fit.LogLikelihood = result.LogLikelihood
		fit.Collapsed = result.Collapsed
		if e.cfg.AutoclassRule == config.PrototypeRule {
			return fit, ml.Prototypes(result.Prototypes), nil
		}
		return fit, ml.Likelihood{Mixture: result.Model}, nil
	}
	return Fit{}, nil, ml.NewConfigurationError("algorithm", ml.ErrInvalidAlgorithm, "'%s'", e.cfg.Algorithm)
}

func newFit(c model.Category, k int, meta ml.Metadata) Fit {
	return Fit{
		Category:   c.String(),
		K:          k,
		Samples:    meta.Samples,
		Iterations: meta.Iterations,
		Converged:  meta.Converged,
		MSE:        meta.MSE,
		Loss:       meta.Loss,
		Clusters:   meta.Summary,
	}
}
