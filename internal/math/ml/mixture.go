package ml

import (
	"fmt"
	"math"
	"strings"

	clust_math "github.com/drakos74/clust/internal/math"
	"gonum.org/v1/gonum/stat/distuv"
)

// ProbabilityFloor bounds bernoulli probabilities away from 0 and 1 when taking logs.
const ProbabilityFloor = 1e-10

// AttrKind is the distribution family of a single attribute.
type AttrKind int

const (
	UnknownAttr AttrKind = iota
	// Binary attributes are modeled by a bernoulli distribution.
	// Values are expected in [0,1] and are true from 0.5 upwards.
	Binary
	// Continuous attributes are modeled by a gaussian distribution.
	Continuous
)

// ParseAttrKind parses the textual representation of an attribute kind.
func ParseAttrKind(s string) (AttrKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bin", "binary":
		return Binary, nil
	case "cn", "continuous":
		return Continuous, nil
	}
	return UnknownAttr, NewConfigurationError("attributes", ErrAttrKind, "'%s'", s)
}

func (a AttrKind) String() string {
	switch a {
	case Binary:
		return "bin"
	case Continuous:
		return "cn"
	}
	return fmt.Sprintf("unknown(%d)", int(a))
}

func (a AttrKind) Valid() bool {
	return a == Binary || a == Continuous
}

func (a AttrKind) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, NewConfigurationError("attributes", ErrAttrKind, "%d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *AttrKind) UnmarshalText(text []byte) error {
	kind, err := ParseAttrKind(string(text))
	if err != nil {
		return err
	}
	*a = kind
	return nil
}

// IsTrue thresholds a binary attribute value.
func IsTrue(x float64) bool {
	return x >= 0.5
}

// Param holds the distribution parameters of one attribute within one cluster.
// P is used by Binary attributes, Mean and Variance by Continuous ones.
type Param struct {
	Kind     AttrKind
	P        float64
	Mean     float64
	Variance float64
}

// Probability evaluates the probability (or density) of x.
func (p Param) Probability(x float64) float64 {
	switch p.Kind {
	case Binary:
		if IsTrue(x) {
			return p.P
		}
		return 1 - p.P
	case Continuous:
		return p.normal().Prob(x)
	}
	return 0
}

// LogProbability evaluates the log probability (or log density) of x.
// Bernoulli probabilities are clamped to [ProbabilityFloor, 1-ProbabilityFloor].
func (p Param) LogProbability(x float64) float64 {
	switch p.Kind {
	case Binary:
		b := distuv.Bernoulli{P: math.Min(math.Max(p.P, ProbabilityFloor), 1-ProbabilityFloor)}
		if IsTrue(x) {
			return b.LogProb(1)
		}
		return b.LogProb(0)
	case Continuous:
		return p.normal().LogProb(x)
	}
	return math.Inf(-1)
}

func (p Param) normal() distuv.Normal {
	return distuv.Normal{
		Mu:    p.Mean,
		Sigma: math.Sqrt(p.Variance),
	}
}

// delta is the largest absolute change of any parameter.
func (p Param) delta(q Param) float64 {
	switch p.Kind {
	case Binary:
		return math.Abs(p.P - q.P)
	case Continuous:
		return math.Max(math.Abs(p.Mean-q.Mean), math.Abs(p.Variance-q.Variance))
	}
	return 0
}

// Component is the set of attribute distributions of one cluster.
type Component []Param

// LogLikelihood is log p(x | C = k).
func (c Component) LogLikelihood(x clust_math.Vector) float64 {
	var ll float64
	for d, param := range c {
		ll += param.LogProbability(x[d])
	}
	return ll
}

// Mixture is a mixture of independent bernoulli and gaussian attributes.
type Mixture struct {
	Kinds      []AttrKind
	Priors     []float64
	Components []Component
}

// NewMixture creates a mixture of k components with uniform priors and zero parameters.
func NewMixture(k int, kinds []AttrKind) *Mixture {
	priors := make([]float64, k)
	components := make([]Component, k)
	for c := 0; c < k; c++ {
		priors[c] = 1 / float64(k)
		component := make(Component, len(kinds))
		for d, kind := range kinds {
			component[d] = Param{Kind: kind}
		}
		components[c] = component
	}
	return &Mixture{
		Kinds:      kinds,
		Priors:     priors,
		Components: components,
	}
}

// K returns the number of clusters.
func (m *Mixture) K() int {
	return len(m.Priors)
}

// Dim returns the number of attributes.
func (m *Mixture) Dim() int {
	return len(m.Kinds)
}

// JointLogLikelihood is log p(C = k) + log p(x | C = k).
func (m *Mixture) JointLogLikelihood(x clust_math.Vector, k int) float64 {
	return math.Log(m.Priors[k]) + m.Components[k].LogLikelihood(x)
}

// LogJoint fills the joint log likelihoods of x for every cluster into logP.
func (m *Mixture) LogJoint(x clust_math.Vector, logP []float64) []float64 {
	if logP == nil {
		logP = make([]float64, m.K())
	}
	for k := range m.Priors {
		logP[k] = m.JointLogLikelihood(x, k)
	}
	return logP
}

// LogLikelihood is log p(x), marginalised over the clusters.
func (m *Mixture) LogLikelihood(x clust_math.Vector) float64 {
	return clust_math.LogSumExp(m.LogJoint(x, nil))
}

// Posterior computes p(C = k | x) for every cluster.
func (m *Mixture) Posterior(x clust_math.Vector) []float64 {
	logP := m.LogJoint(x, nil)
	normalize(logP)
	return logP
}

// normalize turns joint log likelihoods into posteriors in place
// and returns the log of their sum.
func normalize(logP []float64) float64 {
	denom := clust_math.LogSumExp(logP)
	for k, l := range logP {
		logP[k] = math.Exp(l - denom)
	}
	return denom
}

// Copy returns a deep copy of the mixture.
func (m *Mixture) Copy() *Mixture {
	priors := make([]float64, len(m.Priors))
	copy(priors, m.Priors)
	components := make([]Component, len(m.Components))
	for k, c := range m.Components {
		component := make(Component, len(c))
		copy(component, c)
		components[k] = component
	}
	return &Mixture{
		Kinds:      m.Kinds,
		Priors:     priors,
		Components: components,
	}
}

// Delta is the largest absolute change of any prior or parameter between the two mixtures.
func (m *Mixture) Delta(prev *Mixture) float64 {
	var delta float64
	for k := range m.Priors {
		delta = math.Max(delta, math.Abs(m.Priors[k]-prev.Priors[k]))
		for d, param := range m.Components[k] {
			delta = math.Max(delta, param.delta(prev.Components[k][d]))
		}
	}
	return delta
}

// Converged reports whether every prior and parameter moved by less than epsilon.
func (m *Mixture) Converged(prev *Mixture, epsilon float64) bool {
	return m.Delta(prev) < epsilon
}
