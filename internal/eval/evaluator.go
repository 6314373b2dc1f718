package eval

import (
	"context"
	"runtime"
	"time"

	"etspga/internal/exact"
	"etspga/internal/ga"
	"etspga/internal/logging"
	"etspga/internal/monitoring"
)

// Evaluator runs the genetic search and the brute-force baseline and
// measures both
type Evaluator struct {
	reportEvery int
	maxPoints   int
	logger      *logging.Logger
	metrics     *monitoring.Metrics
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithLogger reports progress every reportEvery rounds through l
func WithLogger(l *logging.Logger, reportEvery int) Option {
	return func(e *Evaluator) {
		e.logger = l
		e.reportEvery = reportEvery
	}
}

// WithMetrics records every round in m
func WithMetrics(m *monitoring.Metrics) Option {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

// WithMaxPoints caps the tour size handed to the brute-force search
func WithMaxPoints(n int) Option {
	return func(e *Evaluator) {
		e.maxPoints = n
	}
}

// NewEvaluator creates a new evaluator
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{maxPoints: exact.MaxPoints}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Usage is the cost of one solver run
type Usage struct {
	Elapsed    time.Duration
	AllocBytes uint64 // bytes allocated while running
	Mallocs    uint64
}

// RunResult describes an evolution run
type RunResult struct {
	Rounds      int
	InitialBest *ga.Tour
	Best        *ga.Tour
	Fitness     float64
	Summary     ga.Summary
	History     []logging.RoundSummary // reported rounds only
	Usage       Usage
}

// BaselineResult describes a brute-force run
type BaselineResult struct {
	exact.Result
	Usage Usage
}

// Comparison pairs the genetic result with the exact optimum
type Comparison struct {
	GA       RunResult
	Baseline *BaselineResult // nil when the baseline was skipped
}

// Gap returns how far the genetic result is above the optimum, as a
// fraction of the optimum. Zero without a baseline.
func (c Comparison) Gap() float64 {
	if c.Baseline == nil || c.Baseline.Fitness == 0 {
		return 0
	}
	return c.GA.Fitness/c.Baseline.Fitness - 1
}

// Evolve runs up to rounds rounds on pop. It stops between rounds when ctx
// is cancelled and reports how many rounds completed.
func (e *Evaluator) Evolve(ctx context.Context, pop *ga.Population, rounds int) RunResult {
	res := RunResult{InitialBest: pop.Best().Clone()}

	probe := startProbe()
	for round := 1; round <= rounds; round++ {
		if ctx.Err() != nil {
			break
		}

		roundStart := time.Now()
		stats := pop.Round()
		elapsed := time.Since(roundStart)
		res.Rounds = round

		if e.metrics != nil {
			e.metrics.RecordRound(stats, elapsed)
		}
		if e.shouldReport(round, rounds) {
			summary := e.logger.LogRound(round, pop, stats, probe.elapsed())
			res.History = append(res.History, summary)
			if e.metrics != nil {
				e.metrics.RecordSummary(ga.Summary{Best: summary.Best, Mean: summary.Mean})
			}
		}
	}
	res.Usage = probe.stop()

	res.Best = pop.Best().Clone()
	res.Fitness = res.Best.Fitness()
	res.Summary = pop.Summary()
	if e.metrics != nil {
		e.metrics.RecordSummary(res.Summary)
	}
	return res
}

func (e *Evaluator) shouldReport(round, rounds int) bool {
	if e.logger == nil || e.reportEvery <= 0 {
		return false
	}
	return round%e.reportEvery == 0 || round == rounds
}

// SolveBaseline runs the brute-force search on t
func (e *Evaluator) SolveBaseline(t *ga.Tour) (*BaselineResult, error) {
	probe := startProbe()
	res, err := exact.SolveLimited(t, e.maxPoints)
	if err != nil {
		return nil, err
	}
	usage := probe.stop()

	if e.metrics != nil {
		e.metrics.RecordExact(res.Fitness, usage.Elapsed)
	}
	return &BaselineResult{Result: res, Usage: usage}, nil
}

// Compare evolves pop and solves the best initial tour exactly. The
// baseline tour is cloned before the first round.
func (e *Evaluator) Compare(ctx context.Context, pop *ga.Population, rounds int, withBaseline bool) (Comparison, error) {
	baselineTour := pop.Best().Clone()

	cmp := Comparison{GA: e.Evolve(ctx, pop, rounds)}
	if !withBaseline {
		return cmp, nil
	}

	baseline, err := e.SolveBaseline(baselineTour)
	if err != nil {
		return cmp, err
	}
	cmp.Baseline = baseline
	return cmp, nil
}

// probe measures wall time and allocations between start and stop
type probe struct {
	start   time.Time
	mallocs uint64
	alloc   uint64
}

func startProbe() *probe {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return &probe{start: time.Now(), mallocs: ms.Mallocs, alloc: ms.TotalAlloc}
}

func (p *probe) elapsed() time.Duration {
	return time.Since(p.start)
}

func (p *probe) stop() Usage {
	elapsed := time.Since(p.start)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Usage{
		Elapsed:    elapsed,
		AllocBytes: ms.TotalAlloc - p.alloc,
		Mallocs:    ms.Mallocs - p.mallocs,
	}
}
