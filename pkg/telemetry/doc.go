// Package telemetry provides history.Observer implementations that export
// navigation activity to Prometheus and OpenTelemetry.
//
//	reg := prometheus.NewRegistry()
//	h := history.NewHash(win, rt, history.WithObserver(history.Observers(
//		telemetry.NewMetrics(telemetry.WithRegistry(reg)),
//		telemetry.NewTracer(),
//	)))
package telemetry
