package ga

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"
)

const populationHeader = "Population: \n" +
	"===========================================================================================================================\n"

// Params configures the operators applied in every round
type Params struct {
	Crossovers     int // parent pairs recombined per round
	Mutations      int // swaps applied to each mutated tour
	MutatedTours   int // tours mutated per round
	CrossoverStart int
	CrossoverEnd   int // inclusive
}

// Population is a steady-state pool of tours over the same cities
type Population struct {
	tours     []*Tour
	size      int
	genomeLen int
	params    Params
	rng       *rand.Rand
}

// RoundStats describes what a single round changed
type RoundStats struct {
	Admitted   int // offspring added to the pool
	Duplicates int // offspring rejected because an equal tour already existed
	Mutated    int
}

// Summary holds fitness statistics over the current tours
type Summary struct {
	Size  int
	Best  float64
	Mean  float64
	Std   float64
	Worst float64
}

// NewPopulation builds a population from copies of explicit tours
func NewPopulation(tours []*Tour, params Params, rng *rand.Rand) (*Population, error) {
	if len(tours) == 0 {
		return nil, ErrEmptyPopulation
	}
	genomeLen := tours[0].Len()
	for i, t := range tours[1:] {
		if t.Len() != genomeLen {
			return nil, fmt.Errorf("%w: tour %d has %d nodes, want %d", ErrTourLengthMismatch, i+1, t.Len(), genomeLen)
		}
	}
	if err := params.validate(len(tours), genomeLen); err != nil {
		return nil, err
	}

	// Room for every offspring a round can add before reduction. Tours are
	// copied so mutation never reaches the caller's or another population's.
	pool := make([]*Tour, len(tours), len(tours)+2*params.Crossovers)
	for i, t := range tours {
		pool[i] = t.Clone()
	}

	return &Population{
		tours:     pool,
		size:      len(tours),
		genomeLen: genomeLen,
		params:    params,
		rng:       rng,
	}, nil
}

// NewRandomPopulation draws one random set of cities and fills the population
// with size distinct orderings of it
func NewRandomPopulation(size, tourLen int, min, max int64, params Params, rng *rand.Rand) (*Population, error) {
	if size <= 0 || tourLen <= 0 {
		return nil, ErrEmptyPopulation
	}
	if float64(size) > orderings(tourLen) {
		return nil, fmt.Errorf("%w: %d tours of %d cities", ErrPopulationTooLarge, size, tourLen)
	}
	if err := params.validate(size, tourLen); err != nil {
		return nil, err
	}

	first, err := RandomTour(tourLen, min, max, rng)
	if err != nil {
		return nil, err
	}

	nodes := first.Nodes()
	tours := make([]*Tour, 0, size)
	for len(tours) < size {
		rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })
		candidate := NewTour(nodes)
		if !containsTour(tours, candidate) {
			tours = append(tours, candidate)
		}
	}
	return NewPopulation(tours, params, rng)
}

func (p Params) validate(size, genomeLen int) error {
	if p.CrossoverStart < 0 || p.CrossoverStart >= p.CrossoverEnd || p.CrossoverEnd >= genomeLen {
		return fmt.Errorf("%w: [%d, %d] for %d cities", ErrCrossoverRange, p.CrossoverStart, p.CrossoverEnd, genomeLen)
	}
	if p.Crossovers < 0 || 2*p.Crossovers > size {
		return fmt.Errorf("%w: %d crossovers, %d tours", ErrTooManyCrossovers, p.Crossovers, size)
	}
	if p.MutatedTours < 0 || p.MutatedTours > size {
		return fmt.Errorf("%w: %d mutated, %d tours", ErrTooManyMutatedTours, p.MutatedTours, size)
	}
	if p.Mutations < 0 || p.Mutations > genomeLen*genomeLen {
		return fmt.Errorf("%w: %d mutations for %d cities", ErrTooManyMutations, p.Mutations, genomeLen)
	}
	return nil
}

// orderings returns n! as a float, saturating at +Inf
func orderings(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
		if math.IsInf(f, 1) {
			break
		}
	}
	return f
}

func containsTour(tours []*Tour, t *Tour) bool {
	return slices.ContainsFunc(tours, t.Equal)
}

// Round runs one generation: crossover, mutation and reduction
func (p *Population) Round() RoundStats {
	var stats RoundStats
	stats.Admitted, stats.Duplicates = p.crossover()
	stats.Mutated = p.mutate()
	p.reduce()
	return stats
}

// crossover appends the offspring of the selected parent pairs. Offspring
// equal to an existing tour, or shorter because a parent repeats a point,
// are dropped.
func (p *Population) crossover() (admitted, duplicates int) {
	pairs := SelectParents(p.tours, p.params.Crossovers, p.rng)
	for _, pair := range pairs {
		c1, c2, err := Crossover(p.tours[pair[0]], p.tours[pair[1]], p.params.CrossoverStart, p.params.CrossoverEnd)
		if err != nil {
			continue
		}
		for _, child := range []*Tour{c1, c2} {
			if child.Len() != p.genomeLen {
				continue
			}
			if containsTour(p.tours, child) {
				duplicates++
				continue
			}
			p.tours = append(p.tours, child)
			admitted++
		}
	}
	return admitted, duplicates
}

// mutate swaps nodes in randomly chosen tours other than the first
func (p *Population) mutate() int {
	targets := SelectMutants(len(p.tours), p.params.MutatedTours, p.rng)
	for _, i := range targets {
		p.tours[i].MutateRandom(p.params.Mutations, p.rng)
	}
	return len(targets)
}

// reduce keeps the size shortest tours; equal lengths keep their order
func (p *Population) reduce() {
	type scored struct {
		tour    *Tour
		fitness float64
	}
	ranked := make([]scored, len(p.tours))
	for i, t := range p.tours {
		ranked[i] = scored{tour: t, fitness: t.Fitness()}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.fitness < b.fitness:
			return -1
		case a.fitness > b.fitness:
			return 1
		}
		return 0
	})

	for i := range p.tours {
		if i < p.size {
			p.tours[i] = ranked[i].tour
		} else {
			p.tours[i] = nil
		}
	}
	p.tours = p.tours[:min(p.size, len(p.tours))]
}

// Best returns the first tour with the lowest fitness
func (p *Population) Best() *Tour {
	best := p.tours[0]
	bestFitness := best.Fitness()
	for _, t := range p.tours[1:] {
		if f := t.Fitness(); f < bestFitness {
			best, bestFitness = t, f
		}
	}
	return best
}

// Tours returns the current tours. The slice must not be modified.
func (p *Population) Tours() []*Tour {
	return p.tours
}

// Size returns the target population size
func (p *Population) Size() int {
	return p.size
}

// GenomeLen returns the number of cities in every tour
func (p *Population) GenomeLen() int {
	return p.genomeLen
}

// Params returns the operator configuration
func (p *Population) Params() Params {
	return p.params
}

// Clone creates an independent deep copy. The copy draws from its own
// random stream seeded from this population's generator.
func (p *Population) Clone() *Population {
	tours := make([]*Tour, len(p.tours), cap(p.tours))
	for i, t := range p.tours {
		tours[i] = t.Clone()
	}
	return &Population{
		tours:     tours,
		size:      p.size,
		genomeLen: p.genomeLen,
		params:    p.params,
		rng:       rand.New(rand.NewSource(p.rng.Int63())),
	}
}

// Summary computes fitness statistics of the current tours
func (p *Population) Summary() Summary {
	fit := fitnessOf(p.tours)
	s := Summary{
		Size:  len(fit),
		Best:  slices.Min(fit),
		Worst: slices.Max(fit),
	}
	if len(fit) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(fit, nil)
	} else {
		s.Mean = fit[0]
	}
	return s
}

// String lists every tour on its own line
func (p *Population) String() string {
	var sb strings.Builder
	sb.WriteString(populationHeader)
	for _, t := range p.tours {
		sb.WriteString(t.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// StringWithFitness lists every tour with its fitness
func (p *Population) StringWithFitness() string {
	var sb strings.Builder
	sb.WriteString(populationHeader)
	for _, t := range p.tours {
		sb.WriteString(t.StringWithFitness())
		sb.WriteByte('\n')
	}
	return sb.String()
}
