package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Prometheus keeps job metrics in a private registry and, when a gateway URL
// is set, pushes them to a Pushgateway on Flush. Batch jobs end before a
// scraper would see them, hence push rather than an HTTP endpoint.
type Prometheus struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stepTotal    *prometheus.CounterVec
	stepDuration *prometheus.SummaryVec
	records      *prometheus.CounterVec
}

// NewPrometheus builds the backend. An empty gatewayURL makes Flush a no-op.
func NewPrometheus(jobName, gatewayURL string) (*Prometheus, error) {
	if jobName == "" {
		jobName = "airline_etl"
	}
	reg := prometheus.NewRegistry()

	stepTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_step_total",
			Help: "Step executions by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "etl_step_duration_seconds",
			Help:       "Step duration in seconds by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	records := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_records_total",
			Help: "Record counts by kind (airports_loaded, flights_read, lookup_misses, rows_written).",
		},
		[]string{"kind"},
	)

	for _, c := range []prometheus.Collector{stepTotal, stepDuration, records} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}

	return &Prometheus{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		stepTotal:    stepTotal,
		stepDuration: stepDuration,
		records:      records,
	}, nil
}

func (p *Prometheus) RecordStep(step string, err error, d time.Duration) {
	s := status(err)
	p.stepTotal.WithLabelValues(step, s).Inc()
	p.stepDuration.WithLabelValues(step, s).Observe(d.Seconds())
}

func (p *Prometheus) RecordRows(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	p.records.WithLabelValues(kind).Add(float64(delta))
}

// Flush pushes the registry to the Pushgateway.
func (p *Prometheus) Flush() error {
	if p.gatewayURL == "" {
		return nil
	}
	if err := push.New(p.gatewayURL, p.jobName).Gatherer(p.reg).Push(); err != nil {
		return fmt.Errorf("metrics: push: %w", err)
	}
	return nil
}
