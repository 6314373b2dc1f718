package eval

import (
	"bytes"
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etspga/internal/exact"
	"etspga/internal/ga"
	"etspga/internal/logging"
	"etspga/internal/monitoring"
)

func newPopulation(t *testing.T, seed int64) *ga.Population {
	t.Helper()
	params := ga.Params{Crossovers: 2, Mutations: 2, MutatedTours: 2, CrossoverStart: 2, CrossoverEnd: 5}
	pop, err := ga.NewRandomPopulation(16, 7, 0, 100, params, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return pop
}

func TestEvolve(t *testing.T) {
	pop := newPopulation(t, 1)
	e := NewEvaluator()

	res := e.Evolve(context.Background(), pop, 200)
	assert.Equal(t, 200, res.Rounds)
	assert.LessOrEqual(t, res.Fitness, res.Summary.Mean)
	assert.Equal(t, pop.Best().Fitness(), res.Fitness)
	assert.Equal(t, 16, res.Summary.Size)
	assert.True(t, res.Usage.Elapsed > 0)

	// the result is a snapshot
	res.Best.Swap([]ga.SwapPair{{0, 3}})
	assert.Equal(t, res.Fitness, pop.Best().Fitness())
}

func TestEvolveStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewEvaluator().Evolve(ctx, newPopulation(t, 2), 50)
	assert.Equal(t, 0, res.Rounds)
	assert.Equal(t, res.InitialBest.Fitness(), res.Fitness)
}

func TestEvolveReportsAndRecords(t *testing.T) {
	dir := t.TempDir()
	l, err := logging.NewLogger("run", filepath.Join(dir, "r.csv"), filepath.Join(dir, "r.jsonl"))
	require.NoError(t, err)
	var console bytes.Buffer
	l.SetConsole(&console)
	require.NoError(t, l.Init())
	defer l.Close()

	m := monitoring.NewMetrics()
	e := NewEvaluator(WithLogger(l, 10), WithMetrics(m))
	res := e.Evolve(context.Background(), newPopulation(t, 3), 25)
	require.Equal(t, 25, res.Rounds)

	// rounds 10, 20 and the last one
	assert.Equal(t, 3, strings.Count(console.String(), "Round "))
	require.Len(t, res.History, 3)
	assert.Equal(t, []int{10, 20, 25}, []int{res.History[0].Round, res.History[1].Round, res.History[2].Round})
	assert.Equal(t, res.Fitness, res.History[2].Best)

	expected := `
# HELP etsp_rounds_total Total number of evolution rounds run
# TYPE etsp_rounds_total counter
etsp_rounds_total 25
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "etsp_rounds_total"))
}

func TestSolveBaseline(t *testing.T) {
	pop := newPopulation(t, 4)
	res, err := NewEvaluator().SolveBaseline(pop.Best())
	require.NoError(t, err)
	assert.Equal(t, uint64(5040), res.Evaluated)
	assert.LessOrEqual(t, res.Fitness, pop.Best().Fitness())
}

func TestSolveBaselineLimit(t *testing.T) {
	pop := newPopulation(t, 5)
	_, err := NewEvaluator(WithMaxPoints(6)).SolveBaseline(pop.Best())
	require.ErrorIs(t, err, exact.ErrTooManyPoints)
}

func TestCompare(t *testing.T) {
	pop := newPopulation(t, 6)
	initial := pop.Best().Clone()

	cmp, err := NewEvaluator().Compare(context.Background(), pop, 300, true)
	require.NoError(t, err)
	require.NotNil(t, cmp.Baseline)

	assert.ElementsMatch(t, initial.Nodes(), cmp.Baseline.Order, "baseline solves the initial best tour")
	assert.LessOrEqual(t, cmp.Baseline.Fitness, cmp.GA.Fitness+1e-9, "nothing beats the optimum")
	assert.GreaterOrEqual(t, cmp.Gap(), -1e-9)

	cmp, err = NewEvaluator().Compare(context.Background(), newPopulation(t, 6), 10, false)
	require.NoError(t, err)
	assert.Nil(t, cmp.Baseline)
	assert.Zero(t, cmp.Gap())
}
