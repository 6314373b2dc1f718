// Package exact finds the optimal closed tour by trying every ordering of
// the cities. It is the ground truth the genetic search is measured against
// and is only practical for small instances: a tour of n cities costs n!
// evaluations, with rotations and reversals evaluated again.
package exact

import (
	"errors"
	"fmt"
	"iter"

	"etspga/internal/ga"
)

// MaxPoints is the largest tour the command line accepts for brute force
const MaxPoints = 12

var (
	ErrEmptyTour     = errors.New("exact: tour has no cities")
	ErrTooManyPoints = errors.New("exact: tour too large for exhaustive search")
)

// Result is the best ordering found
type Result struct {
	Order     []ga.Point
	Fitness   float64
	Evaluated uint64 // orderings tried
}

// Tour wraps the optimal order as a tour
func (r Result) Tour() *ga.Tour {
	return ga.NewTour(r.Order)
}

// Solve tries every ordering of the tour's cities and keeps the shortest.
// Equal lengths keep the ordering found first, starting with the input order.
func Solve(t *ga.Tour) (Result, error) {
	n := t.Len()
	if n == 0 {
		return Result{}, ErrEmptyTour
	}

	nodes := t.Nodes()
	best := Result{Order: t.Nodes(), Fitness: t.Fitness()}
	bestPerm := make([]int, n)
	found := false

	for perm := range Permutations(n) {
		best.Evaluated++
		if f := routeLength(nodes, perm); f < best.Fitness {
			best.Fitness = f
			copy(bestPerm, perm)
			found = true
		}
	}

	if found {
		for i, k := range bestPerm {
			best.Order[i] = nodes[k]
		}
	}
	return best, nil
}

// SolveLimited is Solve with an upper bound on the number of cities
func SolveLimited(t *ga.Tour, maxPoints int) (Result, error) {
	if t.Len() > maxPoints {
		return Result{}, fmt.Errorf("%w: %d cities, limit %d", ErrTooManyPoints, t.Len(), maxPoints)
	}
	return Solve(t)
}

func routeLength(nodes []ga.Point, perm []int) float64 {
	n := len(perm)
	var total float64
	for i := 0; i < n-1; i++ {
		total += ga.Distance(nodes[perm[i]], nodes[perm[i+1]])
	}
	total += ga.Distance(nodes[perm[n-1]], nodes[perm[0]])
	return total
}

// Permutations yields every ordering of 0..n-1 using Heap's algorithm.
// The yielded slice is reused between iterations; copy it to keep it.
func Permutations(n int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if n <= 0 {
			return
		}
		perm := make([]int, n)
		for i := range perm {
			perm[i] = i
		}
		if !yield(perm) {
			return
		}

		c := make([]int, n)
		i := 1
		for i < n {
			if c[i] < i {
				if i%2 == 0 {
					perm[0], perm[i] = perm[i], perm[0]
				} else {
					perm[c[i]], perm[i] = perm[i], perm[c[i]]
				}
				if !yield(perm) {
					return
				}
				c[i]++
				i = 1
			} else {
				c[i] = 0
				i++
			}
		}
	}
}
