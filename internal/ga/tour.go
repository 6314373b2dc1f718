package ga

import (
	"fmt"
	"math/rand"
	"strings"
)

// Tour is a closed route through its nodes, returning from the last node
// to the first.
type Tour struct {
	nodes []Point
}

// NewTour wraps the given visiting order. Duplicate points are allowed.
func NewTour(nodes []Point) *Tour {
	return &Tour{nodes: append([]Point(nil), nodes...)}
}

// RandomTour samples random points until n distinct ones are collected
func RandomTour(n int, min, max int64, rng *rand.Rand) (*Tour, error) {
	if min >= max {
		return nil, fmt.Errorf("%w: min=%d max=%d", ErrCoordinateRange, min, max)
	}
	span := max - min
	if span < 1<<31 && span*span < int64(n) {
		return nil, fmt.Errorf("%w: %d points in [%d, %d)", ErrNotEnoughPoints, n, min, max)
	}

	nodes := make([]Point, 0, n)
	seen := make(map[Point]struct{}, n)
	for len(nodes) < n {
		p := RandomPoint(min, max, rng)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		nodes = append(nodes, p)
	}
	return &Tour{nodes: nodes}, nil
}

// Len returns the number of nodes
func (t *Tour) Len() int {
	return len(t.nodes)
}

// At returns the node at position i
func (t *Tour) At(i int) Point {
	return t.nodes[i]
}

// Nodes returns a copy of the visiting order
func (t *Tour) Nodes() []Point {
	return append([]Point(nil), t.nodes...)
}

// Fitness returns the closed tour length. Lower is better.
func (t *Tour) Fitness() float64 {
	return RouteLength(t.nodes)
}

// RouteLength sums consecutive distances and closes the cycle
func RouteLength(nodes []Point) float64 {
	n := len(nodes)
	if n == 0 {
		return 0
	}
	var total float64
	for i := 0; i < n-1; i++ {
		total += Distance(nodes[i], nodes[i+1])
	}
	total += Distance(nodes[n-1], nodes[0])
	return total
}

// Equal reports whether both tours visit the same points in the same order.
// Rotations and reversals are different tours.
func (t *Tour) Equal(other *Tour) bool {
	if len(t.nodes) != len(other.nodes) {
		return false
	}
	for i := range t.nodes {
		if t.nodes[i] != other.nodes[i] {
			return false
		}
	}
	return true
}

// Clone creates a deep copy of a tour
func (t *Tour) Clone() *Tour {
	return NewTour(t.nodes)
}

// String renders the nodes separated by " | "
func (t *Tour) String() string {
	var sb strings.Builder
	for _, p := range t.nodes {
		sb.WriteString(p.String())
		sb.WriteString(" | ")
	}
	return sb.String()
}

// StringWithFitness renders the nodes followed by "=> fitness"
func (t *Tour) StringWithFitness() string {
	return t.String() + "=> " + formatFloat(t.Fitness())
}
