package ml

import (
	"fmt"

	"github.com/drakos74/clust/internal/math"
	"github.com/rs/zerolog/log"
)

// Scorer scores how far a vector is from a learned model. Lower is closer.
type Scorer interface {
	Score(x math.Vector) (float64, error)
}

// NearestPrototype finds the prototype closest to x and its squared distance.
// Nil prototypes (empty clusters) are skipped and ties resolve to the first prototype.
func NearestPrototype(x math.Vector, prototypes []math.Vector) (math.Vector, float64, error) {
	c, d, err := nearest(x, prototypes)
	if err != nil {
		return nil, 0, err
	}
	return prototypes[c], d, nil
}

// Prototypes scores vectors by the squared distance to the nearest prototype.
type Prototypes []math.Vector

func (pp Prototypes) Score(x math.Vector) (float64, error) {
	_, d, err := NearestPrototype(x, pp)
	return d, err
}

// Likelihood scores vectors by their negative log-likelihood under a mixture.
type Likelihood struct {
	Mixture *Mixture
}

func (l Likelihood) Score(x math.Vector) (float64, error) {
	if len(x) != l.Mixture.Dim() {
		return 0, fmt.Errorf("%d vs %d: %w", len(x), l.Mixture.Dim(), math.ErrDimensionMismatch)
	}
	return -l.Mixture.LogLikelihood(x), nil
}

// CategoryReport is the evaluation outcome for the test vectors of one category.
type CategoryReport struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// Report is the outcome of an evaluation.
type Report struct {
	Correct    int              `json:"correct"`
	Total      int              `json:"total"`
	Accuracy   float64          `json:"accuracy"`
	Categories []CategoryReport `json:"categories"`
}

// Classify returns the index of the model with the lowest score for x.
// It returns -1 when two or more models share the lowest score.
func Classify(x math.Vector, models []Scorer) (int, error) {
	best := -1
	var min float64
	tie := false
	for c, model := range models {
		s, err := model.Score(x)
		if err != nil {
			return -1, fmt.Errorf("could not score against model %d: %w", c, err)
		}
		switch {
		case best < 0 || s < min:
			best = c
			min = s
			tie = false
		case s == min:
			tie = true
		}
	}
	if tie {
		return -1, nil
	}
	return best, nil
}

// Evaluate attributes the test vectors of every category to the closest model.
// tests[c] holds the vectors known to belong to the category of models[c].
// A vector counts as correct only if its own model is strictly closer than every other one.
func Evaluate(models []Scorer, tests [][]math.Vector) (Report, error) {
	if len(models) < 2 {
		return Report{}, NewConfigurationError("models", ErrNoPrototypes, "need at least 2 categories, got %d", len(models))
	}
	if len(models) != len(tests) {
		return Report{}, NewConfigurationError("tests", ErrInvalidDimension, "%d test sets for %d models", len(tests), len(models))
	}

	report := Report{
		Categories: make([]CategoryReport, len(models)),
	}
	for c, vv := range tests {
		for i, x := range vv {
			guess, err := Classify(x, models)
			if err != nil {
				log.Error().
					Err(err).
					Int("category", c).
					Int("index", i).
					Msg("could not classify test vector")
				return Report{}, fmt.Errorf("could not classify vector %d of category %d: %w", i, c, err)
			}
			if guess == c {
				report.Categories[c].Correct++
			}
			report.Categories[c].Total++
		}
		report.Categories[c].Accuracy = ratio(report.Categories[c].Correct, report.Categories[c].Total)
		report.Correct += report.Categories[c].Correct
		report.Total += report.Categories[c].Total
	}
	report.Accuracy = ratio(report.Correct, report.Total)
	return report, nil
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
