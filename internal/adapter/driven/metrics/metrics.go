// Package metrics exposes monitoring cycle outcomes as Prometheus metrics.
//
// Metrics:
//   - aws_cost_sentinel_cycles_total: completed monitoring cycles
//   - aws_cost_sentinel_cycle_failures_total: cycles aborted by a billing error
//   - aws_cost_sentinel_anomalies_total: cycles whose verdict was a spike
//   - aws_cost_sentinel_daily_total_usd: latest daily total
//   - aws_cost_sentinel_anomaly_ratio: latest day-over-day ratio (absent until a baseline exists)
//   - aws_cost_sentinel_analysis_total: analysis requests by outcome
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
	"github.com/diillson/aws-cost-sentinel-go/internal/domain/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aws_cost_sentinel"

// Collector records cycle metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	cycles     prometheus.Counter
	failures   prometheus.Counter
	anomalies  prometheus.Counter
	dailyTotal prometheus.Gauge
	ratio      prometheus.Gauge
	analysis   *prometheus.CounterVec
}

// NewCollector creates and registers the metrics. A nil registry gets a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed monitoring cycles",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_failures_total",
			Help:      "Monitoring cycles aborted by a billing API error",
		}),
		anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Cycles whose day-over-day ratio reached the threshold",
		}),
		dailyTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "daily_total_usd",
			Help:      "Latest daily cost total in USD",
		}),
		ratio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "anomaly_ratio",
			Help:      "Latest day-over-day cost ratio",
		}),
		analysis: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_total",
			Help:      "Analysis requests by outcome",
		}, []string{"outcome"}),
	}

	registry.MustRegister(c.cycles, c.failures, c.anomalies, c.dailyTotal, c.analysis)
	return c
}

var _ repository.MetricsRecorder = (*Collector)(nil)

// ObserveCycle records a completed cycle.
func (c *Collector) ObserveCycle(result entity.CycleResult) {
	c.cycles.Inc()
	c.dailyTotal.Set(result.NewTotal)
	if result.Verdict.IsAnomaly {
		c.anomalies.Inc()
	}
	if result.Verdict.Ratio != nil {
		// registered lazily so the series is absent until a ratio exists
		if err := c.registry.Register(c.ratio); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return
			}
		}
		c.ratio.Set(*result.Verdict.Ratio)
	}
}

// ObserveCycleFailure records a cycle aborted before a verdict.
func (c *Collector) ObserveCycleFailure() {
	c.failures.Inc()
}

// ObserveAnalysis records an analysis attempt outcome (ok, failed, skipped).
func (c *Collector) ObserveAnalysis(outcome string) {
	c.analysis.WithLabelValues(outcome).Inc()
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
