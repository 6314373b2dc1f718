package ga

import (
	"math/rand"
)

// ParentPair holds population indices of two distinct parents
type ParentPair [2]int

// rouletteWheel returns the cumulative weights normalized by their total.
// The last entry is 1. A zero total gives every entry the same weight.
func rouletteWheel(weights []float64) []float64 {
	wheel := make([]float64, len(weights))
	var sum float64
	for i, w := range weights {
		sum += w
		wheel[i] = sum
	}
	if sum == 0 {
		for i := range wheel {
			wheel[i] = float64(i+1) / float64(len(wheel))
		}
		return wheel
	}
	for i := range wheel {
		wheel[i] /= sum
	}
	return wheel
}

// pickFromRoulette returns the first index whose cumulative value is
// strictly above pick. Falls back to the last index on rounding.
func pickFromRoulette(wheel []float64, pick float64) int {
	for i, v := range wheel {
		if pick < v {
			return i
		}
	}
	return len(wheel) - 1
}

// fitnessOf evaluates every tour once
func fitnessOf(tours []*Tour) []float64 {
	fit := make([]float64, len(tours))
	for i, t := range tours {
		fit[i] = t.Fitness()
	}
	return fit
}

// SelectParents draws n parent pairs without replacement. Each draw spins a
// wheel built from the fitness of the tours not chosen yet, so a tour's
// chance is proportional to its own length.
func SelectParents(tours []*Tour, n int, rng *rand.Rand) []ParentPair {
	weights := fitnessOf(tours)
	ids := make([]int, len(tours))
	for i := range ids {
		ids[i] = i
	}

	draw := func() int {
		k := pickFromRoulette(rouletteWheel(weights), rng.Float64())
		id := ids[k]
		weights = append(weights[:k], weights[k+1:]...)
		ids = append(ids[:k], ids[k+1:]...)
		return id
	}

	pairs := make([]ParentPair, 0, n)
	for i := 0; i < n && len(ids) >= 2; i++ {
		p1 := draw()
		p2 := draw()
		pairs = append(pairs, ParentPair{p1, p2})
	}
	return pairs
}

// SelectMutants picks up to n distinct indices uniformly from [1, size).
// Index 0 is never picked.
func SelectMutants(size, n int, rng *rand.Rand) []int {
	candidates := make([]int, 0, size)
	for i := 1; i < size; i++ {
		candidates = append(candidates, i)
	}
	if n > len(candidates) {
		n = len(candidates)
	}

	picked := make([]int, 0, n)
	for i := 0; i < n; i++ {
		k := rng.Intn(len(candidates))
		picked = append(picked, candidates[k])
		candidates = append(candidates[:k], candidates[k+1:]...)
	}
	return picked
}
