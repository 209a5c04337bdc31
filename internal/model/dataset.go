package model

import (
	"fmt"

	"github.com/drakos74/clust/internal/math"
)

// Dataset holds the examples of every category.
type Dataset struct {
	Examples [][]math.Vector
}

// NewDataset creates an empty dataset for all known categories.
func NewDataset() Dataset {
	examples := make([][]math.Vector, len(Categories))
	for c := range examples {
		examples[c] = make([]math.Vector, 0)
	}
	return Dataset{Examples: examples}
}

// Add adds an example to the given category.
func (d *Dataset) Add(c Category, x math.Vector) error {
	if !c.Valid() {
		return fmt.Errorf("unknown category %d", int(c))
	}
	d.Examples[c] = append(d.Examples[c], x)
	return nil
}

// Of returns the examples of the given category.
func (d Dataset) Of(c Category) []math.Vector {
	return d.Examples[c]
}

// Size returns the total number of examples.
func (d Dataset) Size() int {
	var n int
	for _, e := range d.Examples {
		n += len(e)
	}
	return n
}

// Dim returns the dimension of the first example, 0 if there is none.
func (d Dataset) Dim() int {
	for _, e := range d.Examples {
		if len(e) > 0 {
			return len(e[0])
		}
	}
	return 0
}

// Average replaces the examples of every category with their sample averages.
func (d Dataset) Average(sampleSize, take int) Dataset {
	examples := make([][]math.Vector, len(d.Examples))
	for c, vv := range d.Examples {
		examples[c] = SampleAverage(vv, sampleSize, take)
	}
	return Dataset{Examples: examples}
}

// SampleAverage treats the vectors as consecutive samples of sampleSize vectors
// and averages the first take vectors of each sample.
// A trailing incomplete sample is averaged as well.
func SampleAverage(vv []math.Vector, sampleSize, take int) []math.Vector {
	if sampleSize <= 0 || take <= 0 {
		return vv
	}
	averaged := make([]math.Vector, 0, len(vv)/sampleSize+1)
	for start := 0; start < len(vv); start += sampleSize {
		end := start + sampleSize
		if end > len(vv) {
			end = len(vv)
		}
		sample := vv[start:end]
		if take < len(sample) {
			sample = sample[:take]
		}
		averaged = append(averaged, math.Mean(sample))
	}
	return averaged
}
