package ml

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	clust_math "github.com/drakos74/clust/internal/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttrKind(t *testing.T) {

	type test struct {
		input string
		kind  AttrKind
		err   error
	}

	tests := map[string]test{
		"bin":        {input: "bin", kind: Binary},
		"binary":     {input: "Binary", kind: Binary},
		"cn":         {input: "cn", kind: Continuous},
		"continuous": {input: " continuous ", kind: Continuous},
		"categorical": {
			input: "categorical",
			kind:  UnknownAttr,
			err:   ErrAttrKind,
		},
		"empty": {
			input: "",
			kind:  UnknownAttr,
			err:   ErrAttrKind,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			kind, err := ParseAttrKind(tt.input)
			assert.Equal(t, tt.kind, kind)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAttrKind_JSON(t *testing.T) {
	var kinds []AttrKind
	require.NoError(t, json.Unmarshal([]byte(`["bin","cn","binary"]`), &kinds))
	assert.Equal(t, []AttrKind{Binary, Continuous, Binary}, kinds)

	b, err := json.Marshal(kinds)
	require.NoError(t, err)
	assert.JSONEq(t, `["bin","cn","bin"]`, string(b))

	err = json.Unmarshal([]byte(`["bin","poisson"]`), &kinds)
	assert.ErrorIs(t, err, ErrAttrKind)

	_, err = json.Marshal([]AttrKind{UnknownAttr})
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestParam_Probability(t *testing.T) {

	type test struct {
		param Param
		x     float64
		p     float64
	}

	tests := map[string]test{
		"bernoulli-true": {
			param: Param{Kind: Binary, P: 0.3},
			x:     1,
			p:     0.3,
		},
		"bernoulli-threshold": {
			param: Param{Kind: Binary, P: 0.3},
			x:     0.5,
			p:     0.3,
		},
		"bernoulli-false": {
			param: Param{Kind: Binary, P: 0.3},
			x:     0.49,
			p:     0.7,
		},
		"gaussian-mean": {
			param: Param{Kind: Continuous, Mean: 2, Variance: 1},
			x:     2,
			p:     1 / math.Sqrt(2*math.Pi),
		},
		"gaussian-sigma": {
			param: Param{Kind: Continuous, Mean: 0, Variance: 4},
			x:     2,
			p:     math.Exp(-0.5) / (2 * math.Sqrt(2*math.Pi)),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tt.p, tt.param.Probability(tt.x), 1e-12)
			assert.InDelta(t, math.Log(tt.p), tt.param.LogProbability(tt.x), 1e-12)
		})
	}
}

func TestParam_LogProbabilityFloor(t *testing.T) {
	zero := Param{Kind: Binary, P: 0}
	assert.Equal(t, 0.0, zero.Probability(1))
	assert.InDelta(t, math.Log(ProbabilityFloor), zero.LogProbability(1), 1e-12)
	assert.False(t, math.IsInf(zero.LogProbability(1), -1))

	one := Param{Kind: Binary, P: 1}
	assert.InDelta(t, math.Log(ProbabilityFloor), one.LogProbability(0), 1e-4)

	unknown := Param{}
	assert.True(t, math.IsInf(unknown.LogProbability(1), -1))
	assert.Equal(t, 0.0, unknown.Probability(1))
}

func testMixture() *Mixture {
	m := NewMixture(2, []AttrKind{Binary, Continuous})
	m.Priors = []float64{0.25, 0.75}
	m.Components[0][0].P = 0.9
	m.Components[0][1].Mean = 0
	m.Components[0][1].Variance = 1
	m.Components[1][0].P = 0.2
	m.Components[1][1].Mean = 5
	m.Components[1][1].Variance = 2
	return m
}

func TestMixture_LogLikelihood(t *testing.T) {
	m := testMixture()
	assert.Equal(t, 2, m.K())
	assert.Equal(t, 2, m.Dim())

	x := clust_math.Vector{1, 1.5}
	p0 := 0.25 * 0.9 * m.Components[0][1].Probability(1.5)
	p1 := 0.75 * 0.2 * m.Components[1][1].Probability(1.5)

	assert.InDelta(t, math.Log(p0), m.JointLogLikelihood(x, 0), 1e-12)
	assert.InDelta(t, math.Log(p1), m.JointLogLikelihood(x, 1), 1e-12)
	assert.InDelta(t, math.Log(p0+p1), m.LogLikelihood(x), 1e-12)

	posterior := m.Posterior(x)
	assert.InDelta(t, p0/(p0+p1), posterior[0], 1e-12)
	assert.InDelta(t, p1/(p0+p1), posterior[1], 1e-12)
	assert.InDelta(t, 1, posterior[0]+posterior[1], 1e-12)
}

func TestMixture_PosteriorUnderflow(t *testing.T) {
	m := NewMixture(2, []AttrKind{Continuous})
	m.Components[0][0] = Param{Kind: Continuous, Mean: 0, Variance: 1e-4}
	m.Components[1][0] = Param{Kind: Continuous, Mean: 1, Variance: 1e-4}

	// both densities underflow to zero outside of log space
	x := clust_math.Vector{0.6}
	assert.Equal(t, 0.0, m.Components[0][0].Probability(100))
	posterior := m.Posterior(clust_math.Vector{100})
	assert.InDelta(t, 1, posterior[0]+posterior[1], 1e-12)
	assert.Equal(t, 1.0, posterior[1])

	posterior = m.Posterior(x)
	assert.InDelta(t, 1, posterior[0]+posterior[1], 1e-12)
	assert.Greater(t, posterior[1], posterior[0])
}

func TestMixture_Converged(t *testing.T) {
	m := testMixture()
	c := m.Copy()
	assert.Equal(t, m, c)
	assert.Equal(t, 0.0, c.Delta(m))
	assert.True(t, c.Converged(m, 1e-9))

	c.Components[1][1].Variance += 1e-3
	assert.InDelta(t, 1e-3, c.Delta(m), 1e-12)
	assert.False(t, c.Converged(m, 1e-4))
	assert.True(t, c.Converged(m, 1e-2))
	// the copy is deep
	assert.Equal(t, 2.0, m.Components[1][1].Variance)

	c = m.Copy()
	c.Priors[0] = math.NaN()
	assert.False(t, c.Converged(m, 1))
}
