// Package metrics provides Prometheus-based metrics recording for workflow
// executions and agent invocations. The engine records through the Recorder
// interface; NoopRecorder keeps metrics optional.
package metrics
