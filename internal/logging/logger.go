package logging

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"etspga/internal/ga"
)

// Logger handles per-round output and artifact saving
type Logger struct {
	runID       string
	csvPath     string
	jsonPath    string
	csvFile     *os.File
	csvWriter   *csv.Writer
	jsonFile    *os.File
	console     io.Writer
	initialized bool
	err         error // first failed write
}

// NewLogger creates a new logger
func NewLogger(runID, csvPath, jsonPath string) (*Logger, error) {
	l := &Logger{
		runID:    runID,
		csvPath:  csvPath,
		jsonPath: jsonPath,
		console:  os.Stdout,
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(jsonPath), 0755); err != nil {
		return nil, err
	}

	return l, nil
}

// SetConsole redirects progress lines, mainly for tests
func (l *Logger) SetConsole(w io.Writer) {
	l.console = w
}

// Init initializes the log files
func (l *Logger) Init() error {
	var err error

	l.csvFile, err = os.Create(l.csvPath)
	if err != nil {
		return err
	}
	l.csvWriter = csv.NewWriter(l.csvFile)

	header := []string{
		"run_id", "round", "best_fitness", "mean_fitness", "std_fitness", "worst_fitness",
		"admitted", "duplicates", "mutated", "elapsed_ms",
	}
	if err := l.csvWriter.Write(header); err != nil {
		return err
	}
	l.csvWriter.Flush()

	l.jsonFile, err = os.OpenFile(l.jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	l.initialized = true
	return nil
}

// Close closes all log files and returns the first failed write, if any
func (l *Logger) Close() error {
	errs := []error{l.err}
	if l.csvWriter != nil {
		l.csvWriter.Flush()
		errs = append(errs, l.csvWriter.Error())
	}
	if l.csvFile != nil {
		errs = append(errs, l.csvFile.Close())
	}
	if l.jsonFile != nil {
		errs = append(errs, l.jsonFile.Close())
	}
	return errors.Join(errs...)
}

// Err returns the first error hit while writing round logs
func (l *Logger) Err() error {
	return l.err
}

func (l *Logger) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}

// RoundSummary holds the statistics reported for a round
type RoundSummary struct {
	RunID      string  `json:"run_id"`
	Round      int     `json:"round"`
	Best       float64 `json:"best_fitness"`
	Mean       float64 `json:"mean_fitness"`
	Std        float64 `json:"std_fitness"`
	Worst      float64 `json:"worst_fitness"`
	Admitted   int     `json:"admitted"`
	Duplicates int     `json:"duplicates"`
	Mutated    int     `json:"mutated"`
	ElapsedMS  int64   `json:"elapsed_ms"`
}

// LogRound writes a summary of the population after a round
func (l *Logger) LogRound(round int, pop *ga.Population, stats ga.RoundStats, elapsed time.Duration) RoundSummary {
	s := pop.Summary()
	summary := RoundSummary{
		RunID:      l.runID,
		Round:      round,
		Best:       s.Best,
		Mean:       s.Mean,
		Std:        s.Std,
		Worst:      s.Worst,
		Admitted:   stats.Admitted,
		Duplicates: stats.Duplicates,
		Mutated:    stats.Mutated,
		ElapsedMS:  elapsed.Milliseconds(),
	}

	fmt.Fprintf(l.console, "Round %7d | Best: %9.3f | Mean: %9.3f | Std: %7.3f | Offspring: +%d/%d dup | Mutated: %d\n",
		round, summary.Best, summary.Mean, summary.Std, summary.Admitted, summary.Duplicates, summary.Mutated)

	if !l.initialized {
		return summary
	}

	row := []string{
		l.runID,
		strconv.Itoa(round),
		fmt.Sprintf("%.4f", summary.Best),
		fmt.Sprintf("%.4f", summary.Mean),
		fmt.Sprintf("%.4f", summary.Std),
		fmt.Sprintf("%.4f", summary.Worst),
		strconv.Itoa(summary.Admitted),
		strconv.Itoa(summary.Duplicates),
		strconv.Itoa(summary.Mutated),
		strconv.FormatInt(summary.ElapsedMS, 10),
	}
	if err := l.csvWriter.Write(row); err != nil {
		l.fail(fmt.Errorf("writing %s: %w", l.csvPath, err))
	}
	l.csvWriter.Flush()
	if err := l.csvWriter.Error(); err != nil {
		l.fail(fmt.Errorf("writing %s: %w", l.csvPath, err))
	}

	jsonLine, err := json.Marshal(summary)
	if err != nil {
		l.fail(err)
		return summary
	}
	if _, err := l.jsonFile.Write(append(jsonLine, '\n')); err != nil {
		l.fail(fmt.Errorf("writing %s: %w", l.jsonPath, err))
	}
	return summary
}

// LogTour prints a labelled tour with its fitness
func (l *Logger) LogTour(label string, t *ga.Tour) {
	fmt.Fprintf(l.console, "%s\n%s\n", label, t.StringWithFitness())
}

// Champion is the saved form of a best tour
type Champion struct {
	RunID   string     `json:"run_id"`
	Round   int        `json:"round"`
	Fitness float64    `json:"fitness"`
	Nodes   []ga.Point `json:"nodes"`
}

// Tour rebuilds the saved tour
func (c *Champion) Tour() *ga.Tour {
	return ga.NewTour(c.Nodes)
}

// SaveChampion saves the champion tour to a file
func SaveChampion(path, runID string, t *ga.Tour, round int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data := Champion{
		RunID:   runID,
		Round:   round,
		Fitness: t.Fitness(),
		Nodes:   t.Nodes(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, jsonData, 0644)
}

// LoadChampion loads a champion tour from a file
func LoadChampion(path string) (*Champion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var saved Champion
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, err
	}
	if len(saved.Nodes) == 0 {
		return nil, fmt.Errorf("champion %s has no nodes", path)
	}

	return &saved, nil
}
