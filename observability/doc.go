// Package observability provides OpenTelemetry tracing and metrics for
// parallel evaluations.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &meterCfg)
//	defer mp.Shutdown(ctx)
//	metrics, err := observability.NewMetrics(observability.Meter("gostream"))
//
// Pass metrics through forkjoin.Config; every forkjoin.Run then records a
// gostream.evaluate span and the gostream.* instruments.
package observability
