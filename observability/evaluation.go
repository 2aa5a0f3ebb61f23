package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Evaluation tracks the span and metrics of one parallel evaluation.
type Evaluation struct {
	ID        string
	Operation string
	StartTime time.Time
	Metrics   *Metrics

	span trace.Span
}

// StartEvaluation starts the evaluation span. If metrics is nil, metric
// recording is skipped.
func StartEvaluation(ctx context.Context, id, operation string, metrics *Metrics) (context.Context, *Evaluation) {
	ctx, span := StartSpan(ctx, SpanEvaluate)
	span.SetAttributes(
		attribute.String(AttrEvaluationID, id),
		attribute.String(AttrOperation, operation),
	)
	return ctx, &Evaluation{
		ID:        id,
		Operation: operation,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
	}
}

// End closes the span and records the evaluation metrics.
func (e *Evaluation) End(ctx context.Context, leaves, splits, cancellations int64, err error) EvaluationStats {
	stats := EvaluationStats{
		Operation:     e.Operation,
		Status:        "ok",
		Leaves:        leaves,
		Splits:        splits,
		Cancellations: cancellations,
		Duration:      time.Since(e.StartTime),
	}
	if err != nil {
		stats.Status = "error"
		e.span.RecordError(err)
		e.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	e.span.SetAttributes(
		attribute.String(AttrStatus, stats.Status),
		attribute.Int64(AttrLeaves, leaves),
		attribute.Int64(AttrSplits, splits),
		attribute.Int64(AttrDurationMs, stats.Duration.Milliseconds()),
	)
	e.span.End()
	e.Metrics.RecordEvaluation(ctx, stats)
	return stats
}
