package ga

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallParams = Params{Crossovers: 1, Mutations: 1, MutatedTours: 1, CrossoverStart: 1, CrossoverEnd: 2}

// givenPopulation has fitness 8, 10 and 6 in that order
func givenPopulation(t *testing.T) *Population {
	t.Helper()
	tours := []*Tour{tourOf(1, 4, 2, 3), tourOf(4, 1, 3, 1), tourOf(1, 2, 3, 4)}
	pop, err := NewPopulation(tours, smallParams, newTestRNG())
	require.NoError(t, err)
	return pop
}

// permutationPopulation holds distinct orderings of nine distinct cities
func permutationPopulation(t *testing.T, size int, params Params, seed int64) *Population {
	t.Helper()
	pop, err := NewRandomPopulation(size, 9, 0, 100, params, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return pop
}

func TestNewPopulationValidation(t *testing.T) {
	rng := newTestRNG()
	valid := []*Tour{tourOf(3, 4, 8, 2, 7, 1, 6, 5), tourOf(4, 2, 5, 1, 6, 8, 3, 7)}

	_, err := NewPopulation(valid, smallParams, rng)
	require.NoError(t, err)

	cases := []struct {
		name   string
		tours  []*Tour
		params Params
		want   error
	}{
		{"empty", nil, smallParams, ErrEmptyPopulation},
		{"length mismatch", []*Tour{tourOf(3, 4, 8, 2, 7), valid[1]}, smallParams, ErrTourLengthMismatch},
		{"start equals end", valid, Params{CrossoverStart: 2, CrossoverEnd: 2}, ErrCrossoverRange},
		{"start after end", valid, Params{CrossoverStart: 4, CrossoverEnd: 2}, ErrCrossoverRange},
		{"end past last index", valid, Params{CrossoverStart: 1, CrossoverEnd: 8}, ErrCrossoverRange},
		{"too many crossovers", valid, Params{Crossovers: 2, CrossoverStart: 1, CrossoverEnd: 2}, ErrTooManyCrossovers},
		{"too many mutated tours", valid, Params{MutatedTours: 3, CrossoverStart: 1, CrossoverEnd: 2}, ErrTooManyMutatedTours},
		{"too many mutations", valid, Params{Mutations: 65, CrossoverStart: 1, CrossoverEnd: 2}, ErrTooManyMutations},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPopulation(tc.tours, tc.params, rng)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewRandomPopulation(t *testing.T) {
	pop := permutationPopulation(t, 15, Params{Crossovers: 3, Mutations: 3, MutatedTours: 3, CrossoverStart: 1, CrossoverEnd: 2}, 7)
	require.Len(t, pop.Tours(), 15)
	assert.Equal(t, 15, pop.Size())
	assert.Equal(t, 9, pop.GenomeLen())

	cities := pop.Tours()[0].Nodes()
	for i, a := range pop.Tours() {
		assert.ElementsMatch(t, cities, a.Nodes(), "every tour visits the same cities")
		for _, b := range pop.Tours()[i+1:] {
			assert.False(t, a.Equal(b), "tours must be distinct orderings")
		}
	}
}

func TestNewRandomPopulationErrors(t *testing.T) {
	rng := newTestRNG()
	_, err := NewRandomPopulation(7, 3, 0, 100, Params{CrossoverStart: 0, CrossoverEnd: 1}, rng)
	require.ErrorIs(t, err, ErrPopulationTooLarge)

	_, err = NewRandomPopulation(6, 3, 0, 100, Params{CrossoverStart: 0, CrossoverEnd: 1}, rng)
	require.NoError(t, err, "3 cities have exactly 6 orderings")

	_, err = NewRandomPopulation(4, 5, 9, 3, smallParams, rng)
	require.ErrorIs(t, err, ErrCoordinateRange)

	_, err = NewRandomPopulation(0, 5, 0, 10, smallParams, rng)
	require.ErrorIs(t, err, ErrEmptyPopulation)
}

func TestCrossoverPhaseGrowsPopulation(t *testing.T) {
	pop := permutationPopulation(t, 10, Params{Crossovers: 2, CrossoverStart: 3, CrossoverEnd: 6}, 11)
	before := len(pop.Tours())

	admitted, duplicates := pop.crossover()
	assert.Equal(t, 4, admitted+duplicates, "distinct cities always give full-length offspring")
	assert.Equal(t, before+admitted, len(pop.Tours()))
	assert.LessOrEqual(t, len(pop.Tours()), cap(pop.Tours()))

	for i, a := range pop.Tours() {
		for _, b := range pop.Tours()[i+1:] {
			assert.False(t, a.Equal(b))
		}
	}
}

func TestCrossoverPhaseRejectsShortOffspring(t *testing.T) {
	tours := []*Tour{tourOf(2, 3, 1, 4), tourOf(4, 1, 4, 3)}
	pop, err := NewPopulation(tours, smallParams, newTestRNG())
	require.NoError(t, err)

	admitted, duplicates := pop.crossover()
	assert.Equal(t, 1, admitted)
	assert.Equal(t, 0, duplicates)
	for _, tour := range pop.Tours() {
		assert.Equal(t, 4, tour.Len())
	}
}

func TestReduce(t *testing.T) {
	pop := givenPopulation(t)
	pop.crossover()
	pop.reduce()
	require.Len(t, pop.Tours(), 3)

	prev := pop.Tours()[0].Fitness()
	for _, tour := range pop.Tours()[1:] {
		assert.LessOrEqual(t, prev, tour.Fitness())
		prev = tour.Fitness()
	}
}

func TestReduceIsStable(t *testing.T) {
	a := tourOf(1, 2, 3, 4)
	b := tourOf(4, 3, 2, 1) // same length as a
	c := tourOf(1, 3, 2, 4)
	pop, err := NewPopulation([]*Tour{c, a, b}, Params{CrossoverStart: 1, CrossoverEnd: 2}, newTestRNG())
	require.NoError(t, err)
	a, b = pop.Tours()[1], pop.Tours()[2]
	pop.size = 2

	pop.reduce()
	require.Len(t, pop.Tours(), 2)
	assert.Same(t, a, pop.Tours()[0])
	assert.Same(t, b, pop.Tours()[1])
}

func TestRoundKeepsSize(t *testing.T) {
	params := Params{Crossovers: 3, Mutations: 2, MutatedTours: 4, CrossoverStart: 2, CrossoverEnd: 6}
	pop := permutationPopulation(t, 12, params, 3)

	for i := 0; i < 300; i++ {
		stats := pop.Round()
		require.Len(t, pop.Tours(), 12)
		assert.Equal(t, 6, stats.Admitted+stats.Duplicates)
		assert.LessOrEqual(t, stats.Mutated, 4)
		for _, tour := range pop.Tours() {
			require.Equal(t, 9, tour.Len())
		}
	}
}

func TestRoundNeverLosesBest(t *testing.T) {
	params := Params{Crossovers: 2, Mutations: 2, MutatedTours: 3, CrossoverStart: 3, CrossoverEnd: 6}
	pop := permutationPopulation(t, 20, params, 5)

	pop.Round()
	best := pop.Best().Fitness()
	for i := 0; i < 500; i++ {
		pop.Round()
		next := pop.Best().Fitness()
		require.LessOrEqual(t, next, best, "round %d", i)
		best = next
	}
}

func TestRoundIsReproducible(t *testing.T) {
	params := Params{Crossovers: 2, Mutations: 2, MutatedTours: 2, CrossoverStart: 3, CrossoverEnd: 6}
	a := permutationPopulation(t, 20, params, 99)
	b := permutationPopulation(t, 20, params, 99)

	for i := 0; i < 200; i++ {
		a.Round()
		b.Round()
	}
	assert.Equal(t, a.StringWithFitness(), b.StringWithFitness())
}

func TestBest(t *testing.T) {
	pop := givenPopulation(t)
	assert.True(t, pop.Best().Equal(tourOf(1, 2, 3, 4)))

	first := tourOf(1, 2, 3, 4)
	second := tourOf(4, 3, 2, 1)
	pop, err := NewPopulation([]*Tour{tourOf(1, 3, 2, 4), first, second}, Params{CrossoverStart: 1, CrossoverEnd: 2}, newTestRNG())
	require.NoError(t, err)
	assert.Same(t, pop.Tours()[1], pop.Best(), "ties return the earliest tour")
	assert.True(t, pop.Best().Equal(first))

	for _, tour := range pop.Tours() {
		assert.LessOrEqual(t, pop.Best().Fitness(), tour.Fitness())
	}
}

func TestClone(t *testing.T) {
	pop := givenPopulation(t)
	clone := pop.Clone()
	require.Equal(t, pop.StringWithFitness(), clone.StringWithFitness())

	clone.Tours()[0].Swap([]SwapPair{{0, 1}})
	assert.True(t, pop.Tours()[0].Equal(tourOf(1, 4, 2, 3)), "clone must not share tours")
	assert.Equal(t, pop.Params(), clone.Params())

	// Clone seeds its generator with one draw from the original
	ref := newTestRNG()
	ref.Int63()
	for i := 0; i < 5; i++ {
		clone.rng.Int63()
	}
	assert.Equal(t, ref.Int63(), pop.rng.Int63(), "clone draws from its own stream")
}

func TestNewPopulationCopiesTours(t *testing.T) {
	shared := []*Tour{tourOf(6, 5, 4, 3, 2, 1), tourOf(1, 3, 5, 2, 4, 6), tourOf(2, 4, 6, 1, 3, 5), tourOf(1, 2, 3, 4, 5, 6)}
	params := Params{Crossovers: 1, Mutations: 3, MutatedTours: 3, CrossoverStart: 1, CrossoverEnd: 3}

	p1, err := NewPopulation(shared, params, newTestRNG())
	require.NoError(t, err)
	p2, err := NewPopulation(shared, params, newTestRNG())
	require.NoError(t, err)
	before := p2.String()

	for i := 0; i < 5; i++ {
		p1.Round()
	}
	assert.Equal(t, before, p2.String(), "rounds on one population must not reach another")
	assert.True(t, shared[0].Equal(tourOf(6, 5, 4, 3, 2, 1)), "caller's tours stay untouched")
	assert.True(t, shared[3].Equal(tourOf(1, 2, 3, 4, 5, 6)))
}

func TestMutationSparesFirstTourListedTwice(t *testing.T) {
	s := tourOf(1, 2, 3, 4, 5, 6)
	pop, err := NewPopulation([]*Tour{s, s}, Params{Mutations: 3, MutatedTours: 1, CrossoverStart: 1, CrossoverEnd: 2}, newTestRNG())
	require.NoError(t, err)
	require.NotSame(t, pop.Tours()[0], pop.Tours()[1])

	for i := 0; i < 10; i++ {
		pop.mutate()
	}
	assert.True(t, pop.Tours()[0].Equal(tourOf(1, 2, 3, 4, 5, 6)), "index 0 is exempt from mutation")
	assert.True(t, s.Equal(tourOf(1, 2, 3, 4, 5, 6)))
}

func TestSummary(t *testing.T) {
	s := givenPopulation(t).Summary()
	assert.Equal(t, 3, s.Size)
	assert.Equal(t, 6.0, s.Best)
	assert.Equal(t, 10.0, s.Worst)
	assert.InDelta(t, 8.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.0, s.Std, 1e-12)
}

func TestPopulationString(t *testing.T) {
	pop := givenPopulation(t)
	header := "Population: \n===========================================================================================================================\n"

	assert.Equal(t, header+
		"(1 , 1) | (1 , 4) | (1 , 2) | (1 , 3) | \n"+
		"(1 , 4) | (1 , 1) | (1 , 3) | (1 , 1) | \n"+
		"(1 , 1) | (1 , 2) | (1 , 3) | (1 , 4) | \n", pop.String())

	assert.Equal(t, header+
		"(1 , 1) | (1 , 4) | (1 , 2) | (1 , 3) | => 8\n"+
		"(1 , 4) | (1 , 1) | (1 , 3) | (1 , 1) | => 10\n"+
		"(1 , 1) | (1 , 2) | (1 , 3) | (1 , 4) | => 6\n", pop.StringWithFitness())
}
