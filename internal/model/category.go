package model

import "fmt"

// Category is the class of an example, as encoded in the data files.
type Category int

const (
	// Poisonous plants are encoded as category 0.
	Poisonous Category = iota
	// Nutritious plants are encoded as category 1.
	Nutritious
)

// Categories lists all known categories in index order.
var Categories = []Category{Poisonous, Nutritious}

func (c Category) String() string {
	switch c {
	case Poisonous:
		return "poisonous"
	case Nutritious:
		return "nutritious"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Valid reports if the category is a known one.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < len(Categories)
}
