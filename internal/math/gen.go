package math

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Generator draws synthetic vectors, one distribution per dimension.
type Generator struct {
	dims []distuv.Rander
}

// NewGenerator creates an empty generator.
func NewGenerator() *Generator {
	return &Generator{dims: make([]distuv.Rander, 0)}
}

// Gaussian adds a normally distributed dimension.
func (g *Generator) Gaussian(mean, variance float64, src rand.Source) *Generator {
	g.dims = append(g.dims, distuv.Normal{
		Mu:    mean,
		Sigma: math.Sqrt(variance),
		Src:   src,
	})
	return g
}

// Bernoulli adds a binary dimension, which is 1 with probability p.
func (g *Generator) Bernoulli(p float64, src rand.Source) *Generator {
	g.dims = append(g.dims, distuv.Bernoulli{
		P:   p,
		Src: src,
	})
	return g
}

// Generate draws n vectors.
func (g *Generator) Generate(n int) []Vector {
	vv := make([]Vector, n)
	for i := 0; i < n; i++ {
		v := make(Vector, len(g.dims))
		for d, dim := range g.dims {
			v[d] = dim.Rand()
		}
		vv[i] = v
	}
	return vv
}

// Blob generates n vectors around the given center with the same variance on every dimension.
func Blob(n int, center Vector, variance float64, seed uint64) []Vector {
	src := rand.NewSource(seed)
	g := NewGenerator()
	for _, c := range center {
		g.Gaussian(c, variance, src)
	}
	return g.Generate(n)
}
