package main

import (
	"flag"
	"fmt"
	"os"

	"etspga/internal/eval"
	"etspga/internal/logging"
	"etspga/internal/report"
)

func main() {
	// Parse flags
	championPath := flag.String("champion", "artifacts/champion_final.json", "path to champion JSON")
	solve := flag.Bool("exact", false, "also solve the champion's cities by brute force")
	maxPoints := flag.Int("max-points", 10, "largest tour to brute force")
	flag.Parse()

	// Load champion
	champion, err := logging.LoadChampion(*championPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading champion: %v\n", err)
		os.Exit(1)
	}

	tour := champion.Tour()
	fmt.Printf("Loaded champion of run %s from round %d (length=%.3f)\n", champion.RunID, champion.Round, champion.Fitness)
	if diff := tour.Fitness() - champion.Fitness; diff > 1e-9 || diff < -1e-9 {
		fmt.Fprintf(os.Stderr, "Warning: saved length %.3f does not match recomputed %.3f\n", champion.Fitness, tour.Fitness())
	}
	report.WriteTour(os.Stdout, "CHAMPION", tour)

	if !*solve {
		return
	}

	baseline, err := eval.NewEvaluator(eval.WithMaxPoints(*maxPoints)).SolveBaseline(tour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running brute force: %v\n", err)
		os.Exit(1)
	}
	fmt.Println()
	report.WriteTour(os.Stdout, "OPTIMUM", baseline.Tour())
	cmp := eval.Comparison{GA: eval.RunResult{Fitness: tour.Fitness()}, Baseline: baseline}
	fmt.Printf("Evaluated %d orders in %v, champion is %.2f%% above the optimum\n",
		baseline.Evaluated, baseline.Usage.Elapsed, cmp.Gap()*100)
}
