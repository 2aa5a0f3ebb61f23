package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/gostream/logger"
	"github.com/kbukum/gostream/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service embedding the engine.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider, versioned with the
// engine build.
func Meter(name string) metric.Meter {
	return otel.Meter(name, metric.WithInstrumentationVersion(version.Get().String()))
}

// Metric instrument names.
const (
	MetricEvaluations        = "gostream.evaluations"
	MetricLeafTasks          = "gostream.leaf_tasks"
	MetricSplits             = "gostream.splits"
	MetricCancellations      = "gostream.cancellations"
	MetricEvaluationDuration = "gostream.evaluation.duration"
)

// Metrics holds the OpenTelemetry instruments recorded by parallel
// evaluations.
type Metrics struct {
	evaluations   metric.Int64Counter
	leafTasks     metric.Int64Counter
	splits        metric.Int64Counter
	cancellations metric.Int64Counter
	duration      metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	evaluations, err := meter.Int64Counter(MetricEvaluations,
		metric.WithDescription("Total number of parallel evaluations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricEvaluations, err)
	}

	leafTasks, err := meter.Int64Counter(MetricLeafTasks,
		metric.WithDescription("Total number of leaf tasks run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricLeafTasks, err)
	}

	splits, err := meter.Int64Counter(MetricSplits,
		metric.WithDescription("Total number of source splits"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricSplits, err)
	}

	cancellations, err := meter.Int64Counter(MetricCancellations,
		metric.WithDescription("Total number of tasks cancelled by short-circuiting"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricCancellations, err)
	}

	duration, err := meter.Float64Histogram(MetricEvaluationDuration,
		metric.WithDescription("Duration of parallel evaluations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricEvaluationDuration, err)
	}

	return &Metrics{
		evaluations:   evaluations,
		leafTasks:     leafTasks,
		splits:        splits,
		cancellations: cancellations,
		duration:      duration,
	}, nil
}

// EvaluationStats summarizes one finished evaluation.
type EvaluationStats struct {
	Operation     string
	Status        string
	Leaves        int64
	Splits        int64
	Cancellations int64
	Duration      time.Duration
}

// RecordEvaluation records a finished evaluation. A nil receiver is a no-op.
func (m *Metrics) RecordEvaluation(ctx context.Context, s EvaluationStats) {
	if m == nil {
		return
	}
	op := attribute.String("operation", s.Operation)
	m.evaluations.Add(ctx, 1, metric.WithAttributes(op, attribute.String("status", s.Status)))
	m.leafTasks.Add(ctx, s.Leaves, metric.WithAttributes(op))
	m.splits.Add(ctx, s.Splits, metric.WithAttributes(op))
	if s.Cancellations > 0 {
		m.cancellations.Add(ctx, s.Cancellations, metric.WithAttributes(op))
	}
	m.duration.Record(ctx, s.Duration.Seconds(), metric.WithAttributes(op))
}
