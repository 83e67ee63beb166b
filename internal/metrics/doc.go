// Package metrics records build observations.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never nil-check:
//
//	b := build.New(cfg, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The preview server owns a registry and exposes it through HTTPHandler.
package metrics
