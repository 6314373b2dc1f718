package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"etspga/internal/config"
	"etspga/internal/eval"
	"etspga/internal/ga"
	"etspga/internal/logging"
	"etspga/internal/monitoring"
	"etspga/internal/report"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "configs/default.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to env file with ETSP_* overrides")
	rounds := flag.Int("rounds", 0, "number of rounds to run (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (overrides config)")
	noExact := flag.Bool("no-exact", false, "skip the brute-force baseline")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying environment: %v\n", err)
		os.Exit(1)
	}
	if *rounds > 0 {
		cfg.Run.Rounds = *rounds
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if *noExact {
		cfg.Exact.Disabled = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in config: %v\n", err)
		os.Exit(1)
	}

	runID := uuid.NewString()
	fmt.Printf("ETSP genetic search - run %s\n", runID)
	fmt.Printf("Config: %s, Seed: %d\n", *configPath, cfg.Seed)
	fmt.Printf("Population: %d tours of %d cities, Rounds: %d\n", cfg.Population.Size, cfg.Population.TourLen, cfg.Run.Rounds)
	fmt.Printf("Crossovers: %d [%d..%d], Mutated tours: %d x %d swaps\n",
		cfg.GA.Crossovers, cfg.GA.CrossoverStart, cfg.GA.CrossoverEnd, cfg.GA.MutatedTours, cfg.GA.Mutations)
	fmt.Println("---")

	// Initialize RNG
	rng := rand.New(rand.NewSource(cfg.Seed))

	// Initialize population
	pop, err := ga.NewRandomPopulation(cfg.Population.Size, cfg.Population.TourLen,
		cfg.Population.CoordMin, cfg.Population.CoordMax, cfg.Params(), rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating population: %v\n", err)
		os.Exit(1)
	}

	withBaseline := !cfg.Exact.Disabled
	if withBaseline && pop.GenomeLen() > cfg.Exact.MaxPoints {
		fmt.Fprintf(os.Stderr, "Warning: %d cities exceed exact.max_points=%d, skipping brute force\n",
			pop.GenomeLen(), cfg.Exact.MaxPoints)
		withBaseline = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create logger
	logger, err := logging.NewLogger(runID, cfg.Logging.CSVPath, cfg.Logging.JSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	metrics := monitoring.NewMetrics()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: metrics endpoint stopped: %v\n", err)
			}
		}()
		fmt.Printf("Metrics: http://%s/metrics\n", cfg.Metrics.Addr)
	}

	if cfg.Run.PrintPopulation {
		report.WritePopulation(os.Stdout, "INITIAL POPULATION", pop)
	}

	evaluator := eval.NewEvaluator(
		eval.WithLogger(logger, cfg.Run.ReportEvery),
		eval.WithMetrics(metrics),
		eval.WithMaxPoints(cfg.Exact.MaxPoints),
	)

	// Main loop
	cmp, err := evaluator.Compare(ctx, pop, cfg.Run.Rounds, withBaseline)
	if closeErr := logger.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: run log incomplete: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running brute force: %v\n", err)
		os.Exit(1)
	}
	if cmp.GA.Rounds < cfg.Run.Rounds {
		fmt.Fprintf(os.Stderr, "Warning: interrupted after %d of %d rounds\n", cmp.GA.Rounds, cfg.Run.Rounds)
	}

	fmt.Println("---")
	if cfg.Run.PrintPopulation {
		report.WritePopulation(os.Stdout, "FINAL POPULATION", pop)
	}
	logger.LogTour("Best tour:", cmp.GA.Best)
	if cmp.Baseline != nil {
		logger.LogTour("Brute force optimum of the initial best tour:", cmp.Baseline.Tour())
	}
	report.WriteComparison(os.Stdout, cmp)

	// Save artifacts
	if err := logging.SaveChampion(cfg.Logging.ChampionPath, runID, cmp.GA.Best, cmp.GA.Rounds); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save champion: %v\n", err)
	}
	if cfg.Logging.XLSXPath != "" {
		if err := report.WriteWorkbook(cfg.Logging.XLSXPath, pop, cmp); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write workbook: %v\n", err)
		}
	}
}
