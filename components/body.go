package components

import "math"

// Body holds the collision circle of an entity.
type Body struct {
	Radius float64
}

// Area returns the circle area.
func (b Body) Area() float64 {
	return math.Pi * b.Radius * b.Radius
}

// Mass is used to split separation impulses. Proportional to area.
func (b Body) Mass() float64 {
	return b.Radius * b.Radius
}
