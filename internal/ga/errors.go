package ga

import "errors"

// Construction errors. Every parameter problem is reported before a round runs.
var (
	ErrEmptyPopulation     = errors.New("ga: population has no tours")
	ErrTourLengthMismatch  = errors.New("ga: tours have different lengths")
	ErrLengthMismatch      = errors.New("ga: parents have different lengths")
	ErrCrossoverRange      = errors.New("ga: invalid crossover range")
	ErrTooManyCrossovers   = errors.New("ga: crossovers need more parents than the population holds")
	ErrTooManyMutatedTours = errors.New("ga: more mutated tours than the population holds")
	ErrTooManyMutations    = errors.New("ga: more mutations than distinct swap pairs")
	ErrCoordinateRange     = errors.New("ga: coordinate min must be below max")
	ErrNotEnoughPoints     = errors.New("ga: coordinate range holds too few distinct points")
	ErrPopulationTooLarge  = errors.New("ga: population exceeds the number of distinct tours")
)
