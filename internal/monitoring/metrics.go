package monitoring

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"etspga/internal/ga"
)

// Metrics collects evolution progress for Prometheus
type Metrics struct {
	registry *prometheus.Registry

	rounds        prometheus.Counter
	offspring     *prometheus.CounterVec
	mutatedTours  prometheus.Counter
	bestFitness   prometheus.Gauge
	meanFitness   prometheus.Gauge
	roundDuration prometheus.Histogram
	exactFitness  prometheus.Gauge
	exactDuration prometheus.Gauge
}

// NewMetrics creates collectors on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "etsp_rounds_total",
			Help: "Total number of evolution rounds run",
		}),
		offspring: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etsp_offspring_total",
				Help: "Offspring produced by crossover, by outcome",
			},
			[]string{"outcome"},
		),
		mutatedTours: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "etsp_mutated_tours_total",
			Help: "Total number of tours mutated",
		}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "etsp_best_fitness",
			Help: "Length of the best tour in the population",
		}),
		meanFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "etsp_mean_fitness",
			Help: "Mean tour length in the population",
		}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "etsp_round_duration_seconds",
			Help:    "Distribution of round durations",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		exactFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "etsp_exact_fitness",
			Help: "Optimal tour length found by brute force",
		}),
		exactDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "etsp_exact_duration_seconds",
			Help: "Wall time of the brute-force search",
		}),
	}

	m.registry.MustRegister(
		m.rounds,
		m.offspring,
		m.mutatedTours,
		m.bestFitness,
		m.meanFitness,
		m.roundDuration,
		m.exactFitness,
		m.exactDuration,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRound records the outcome of one round
func (m *Metrics) RecordRound(stats ga.RoundStats, elapsed time.Duration) {
	m.rounds.Inc()
	m.offspring.WithLabelValues("admitted").Add(float64(stats.Admitted))
	m.offspring.WithLabelValues("duplicate").Add(float64(stats.Duplicates))
	m.mutatedTours.Add(float64(stats.Mutated))
	m.roundDuration.Observe(elapsed.Seconds())
}

// RecordSummary updates the population fitness gauges
func (m *Metrics) RecordSummary(s ga.Summary) {
	m.bestFitness.Set(s.Best)
	m.meanFitness.Set(s.Mean)
}

// RecordExact records the brute-force baseline
func (m *Metrics) RecordExact(fitness float64, elapsed time.Duration) {
	m.exactFitness.Set(fitness)
	m.exactDuration.Set(elapsed.Seconds())
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// Serve exposes /metrics on addr until ctx is cancelled
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}
