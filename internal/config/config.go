package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"etspga/internal/exact"
	"etspga/internal/ga"
)

// Config is the root configuration structure
type Config struct {
	Seed       int64            `yaml:"seed"`
	Population PopulationConfig `yaml:"population"`
	GA         GAConfig         `yaml:"ga"`
	Run        RunConfig        `yaml:"run"`
	Exact      ExactConfig      `yaml:"exact"`
	Logging    LogConfig        `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// PopulationConfig defines the random instance
type PopulationConfig struct {
	Size     int   `yaml:"size"`
	TourLen  int   `yaml:"tour_len"`
	CoordMin int64 `yaml:"coord_min"`
	CoordMax int64 `yaml:"coord_max"` // exclusive
}

// GAConfig defines genetic operator parameters
type GAConfig struct {
	Crossovers     int `yaml:"crossovers"`
	Mutations      int `yaml:"mutations"`
	MutatedTours   int `yaml:"mutated_tours"`
	CrossoverStart int `yaml:"crossover_start"`
	CrossoverEnd   int `yaml:"crossover_end"`
}

// RunConfig defines the evolution loop
type RunConfig struct {
	Rounds          int  `yaml:"rounds"`
	ReportEvery     int  `yaml:"report_every"`
	PrintPopulation bool `yaml:"print_population"`
}

// ExactConfig defines the brute-force baseline
type ExactConfig struct {
	Disabled  bool `yaml:"disabled"`
	MaxPoints int  `yaml:"max_points"`
}

// LogConfig defines output artifacts
type LogConfig struct {
	CSVPath      string `yaml:"csv_path"`
	JSONPath     string `yaml:"json_path"`
	ChampionPath string `yaml:"champion_path"`
	XLSXPath     string `yaml:"xlsx_path"` // empty disables the workbook
}

// MetricsConfig defines the Prometheus endpoint
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

var ErrInvalid = errors.New("config: invalid value")

// Default returns a config with every default applied
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML config file and returns a Config
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Keys missing from the file keep their defaults; explicit zeros are kept
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Seed == 0 {
		cfg.Seed = 1337
	}
	if cfg.Population.Size == 0 {
		cfg.Population.Size = 20
	}
	if cfg.Population.TourLen == 0 {
		cfg.Population.TourLen = 10
	}
	if cfg.Population.CoordMax == 0 {
		cfg.Population.CoordMax = 100
	}
	if cfg.GA.Crossovers == 0 {
		cfg.GA.Crossovers = 2
	}
	if cfg.GA.Mutations == 0 {
		cfg.GA.Mutations = 2
	}
	if cfg.GA.MutatedTours == 0 {
		cfg.GA.MutatedTours = 2
	}
	if cfg.GA.CrossoverStart == 0 && cfg.GA.CrossoverEnd == 0 {
		cfg.GA.CrossoverStart = 3
		cfg.GA.CrossoverEnd = 6
	}
	if cfg.Run.Rounds == 0 {
		cfg.Run.Rounds = 100000
	}
	if cfg.Run.ReportEvery == 0 {
		cfg.Run.ReportEvery = 10000
	}
	if cfg.Exact.MaxPoints == 0 {
		cfg.Exact.MaxPoints = exact.MaxPoints
	}
	if cfg.Logging.CSVPath == "" {
		cfg.Logging.CSVPath = "runs/run.csv"
	}
	if cfg.Logging.JSONPath == "" {
		cfg.Logging.JSONPath = "runs/run.jsonl"
	}
	if cfg.Logging.ChampionPath == "" {
		cfg.Logging.ChampionPath = "artifacts/champion_final.json"
	}
}

// envOverrides maps ETSP_* variables onto config fields
var envOverrides = map[string]func(*Config, string) error{
	"ETSP_SEED":            func(c *Config, v string) error { return parseInt64(v, &c.Seed) },
	"ETSP_POPULATION_SIZE": func(c *Config, v string) error { return parseInt(v, &c.Population.Size) },
	"ETSP_TOUR_LEN":        func(c *Config, v string) error { return parseInt(v, &c.Population.TourLen) },
	"ETSP_COORD_MIN":       func(c *Config, v string) error { return parseInt64(v, &c.Population.CoordMin) },
	"ETSP_COORD_MAX":       func(c *Config, v string) error { return parseInt64(v, &c.Population.CoordMax) },
	"ETSP_CROSSOVERS":      func(c *Config, v string) error { return parseInt(v, &c.GA.Crossovers) },
	"ETSP_MUTATIONS":       func(c *Config, v string) error { return parseInt(v, &c.GA.Mutations) },
	"ETSP_MUTATED_TOURS":   func(c *Config, v string) error { return parseInt(v, &c.GA.MutatedTours) },
	"ETSP_CROSSOVER_START": func(c *Config, v string) error { return parseInt(v, &c.GA.CrossoverStart) },
	"ETSP_CROSSOVER_END":   func(c *Config, v string) error { return parseInt(v, &c.GA.CrossoverEnd) },
	"ETSP_ROUNDS":          func(c *Config, v string) error { return parseInt(v, &c.Run.Rounds) },
	"ETSP_REPORT_EVERY":    func(c *Config, v string) error { return parseInt(v, &c.Run.ReportEvery) },
	"ETSP_METRICS_ADDR":    func(c *Config, v string) error { c.Metrics.Addr = v; return nil },
	"ETSP_XLSX_PATH":       func(c *Config, v string) error { c.Logging.XLSXPath = v; return nil },
}

// ApplyEnv loads envPath (if it exists) into the process environment and
// applies ETSP_* overrides. Variables already set in the environment win
// over the file.
func (c *Config) ApplyEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envPath, err)
		}
	}
	for name, apply := range envOverrides {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		if err := apply(c, v); err != nil {
			return fmt.Errorf("%s=%q: %w", name, v, err)
		}
	}
	return nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseInt64(v string, dst *int64) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

// Validate checks run-level settings. Operator parameters are checked when
// the population is built.
func (c *Config) Validate() error {
	if c.Run.Rounds < 0 {
		return fmt.Errorf("%w: rounds=%d", ErrInvalid, c.Run.Rounds)
	}
	if c.Run.ReportEvery < 0 {
		return fmt.Errorf("%w: report_every=%d", ErrInvalid, c.Run.ReportEvery)
	}
	if c.Exact.MaxPoints < 1 || c.Exact.MaxPoints > exact.MaxPoints {
		return fmt.Errorf("%w: max_points=%d, want 1..%d", ErrInvalid, c.Exact.MaxPoints, exact.MaxPoints)
	}
	return nil
}

// Params converts the GA section into operator parameters
func (c *Config) Params() ga.Params {
	return ga.Params{
		Crossovers:     c.GA.Crossovers,
		Mutations:      c.GA.Mutations,
		MutatedTours:   c.GA.MutatedTours,
		CrossoverStart: c.GA.CrossoverStart,
		CrossoverEnd:   c.GA.CrossoverEnd,
	}
}
