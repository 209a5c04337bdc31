package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/drakos74/clust/internal/math/ml"
	"github.com/rs/zerolog/log"
)

const (
	KMeans    = "kmeans"
	Autoclass = "autoclass"

	// LikelihoodRule scores autoclass models by their mixture log-likelihood.
	LikelihoodRule = "likelihood"
	// PrototypeRule scores autoclass models by the distance to their cluster means.
	PrototypeRule = "prototype"

	// SampleSize is the number of consecutive examples forming one sample.
	SampleSize = 10
)

// Iterations holds the iteration ceiling of each algorithm.
type Iterations struct {
	KMeans    int `json:"kmeans"`
	Autoclass int `json:"autoclass"`
}

// Config holds all settings of a clustering run.
type Config struct {
	Algorithm        string        `json:"algorithm"`
	K                [2]int        `json:"k"`
	Epsilon          float64       `json:"epsilon"`
	Attributes       []ml.AttrKind `json:"attributes,omitempty"`
	DefaultAttribute ml.AttrKind   `json:"default_attribute"`
	Samples          *[2]int       `json:"samples,omitempty"`
	NumExamples      int           `json:"num_examples"`
	TrainFile        string        `json:"train_file"`
	TestFile         string        `json:"test_file"`
	Seed             uint64        `json:"seed"`
	MaxIterations    Iterations    `json:"max_iterations"`
	MinVariance      float64       `json:"min_variance"`
	AutoclassRule    string        `json:"autoclass_rule"`
	Raw              bool          `json:"raw"`
	ReportDir        string        `json:"report_dir,omitempty"`
	PushGateway      string        `json:"push_gateway,omitempty"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Algorithm:        KMeans,
		K:                [2]int{3, 1},
		Epsilon:          1e-6,
		DefaultAttribute: ml.Binary,
		NumExamples:      10000,
		TrainFile:        "../data/plants0.dat",
		TestFile:         "../data/plants1.dat",
		MaxIterations: Iterations{
			KMeans:    ml.DefaultKMeansIterations,
			Autoclass: ml.DefaultAutoclassIterations,
		},
		MinVariance:   ml.DefaultMinVariance,
		AutoclassRule: LikelihoodRule,
	}
}

// Load reads the json config at the given path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not load config '%s': %w", path, err)
	}

	err = json.Unmarshal(b, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not unmarshal config '%s': %w", path, err)
	}

	log.Info().Str("path", path).Str("algorithm", cfg.Algorithm).Msg("loaded config")
	return cfg, nil
}

// Validate checks every field that does not depend on the data.
func (c Config) Validate() error {
	switch c.Algorithm {
	case KMeans, Autoclass:
	default:
		return ml.NewConfigurationError("algorithm", ml.ErrInvalidAlgorithm, "'%s'", c.Algorithm)
	}
	for i, k := range c.K {
		if k <= 0 {
			return ml.NewConfigurationError("k", ml.ErrInvalidK, "k[%d] = %d", i, k)
		}
	}
	if !(c.Epsilon > 0) {
		return ml.NewConfigurationError("epsilon", ml.ErrInvalidEpsilon, "%v", c.Epsilon)
	}
	if c.NumExamples <= 0 {
		return ml.NewConfigurationError("num_examples", ml.ErrNoExamples, "%d", c.NumExamples)
	}
	if c.Samples != nil {
		for i, s := range c.Samples {
			if s <= 0 || s > SampleSize {
				return ml.NewConfigurationError("samples", ml.ErrNoExamples, "samples[%d] = %d must be in [1,%d]", i, s, SampleSize)
			}
		}
	}
	for i, a := range c.Attributes {
		if !a.Valid() {
			return ml.NewConfigurationError("attributes", ml.ErrAttrKind, "attribute %d", i)
		}
	}
	if len(c.Attributes) == 0 && !c.DefaultAttribute.Valid() {
		return ml.NewConfigurationError("default_attribute", ml.ErrAttrKind, "")
	}
	if c.Algorithm == Autoclass {
		switch c.AutoclassRule {
		case LikelihoodRule, PrototypeRule:
		default:
			return ml.NewConfigurationError("autoclass_rule", ml.ErrInvalidAlgorithm, "'%s'", c.AutoclassRule)
		}
	}
	if c.MinVariance < 0 {
		return ml.NewConfigurationError("min_variance", ml.ErrInvalidEpsilon, "%v", c.MinVariance)
	}
	return nil
}

// AttrKinds returns the attribute kinds for vectors of dimension d.
func (c Config) AttrKinds(d int) ([]ml.AttrKind, error) {
	if len(c.Attributes) > 0 {
		if len(c.Attributes) != d {
			return nil, ml.NewConfigurationError("attributes", ml.ErrVectorMismatch, "%d kinds for dimension %d", len(c.Attributes), d)
		}
		return c.Attributes, nil
	}
	kinds := make([]ml.AttrKind, d)
	for i := range kinds {
		kinds[i] = c.DefaultAttribute
	}
	return kinds, nil
}
