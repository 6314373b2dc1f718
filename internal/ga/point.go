package ga

import (
	"math"
	"math/rand"
	"strconv"
)

// Point is a city on the plane. Two points are the same city only if both
// coordinates compare equal.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint creates a point from its coordinates
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// RandomPoint samples integer coordinates uniformly from [min, max)
func RandomPoint(min, max int64, rng *rand.Rand) Point {
	span := max - min
	x := min + rng.Int63n(span)
	y := min + rng.Int63n(span)
	return Point{X: float64(x), Y: float64(y)}
}

// Distance returns the Euclidean distance between two points
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// String renders the point as "(x , y)"
func (p Point) String() string {
	return "(" + formatFloat(p.X) + " , " + formatFloat(p.Y) + ")"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
