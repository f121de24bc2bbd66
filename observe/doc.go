// Package observe provides logging, tracing and metrics for credential
// resolution.
//
// It is a pure instrumentation library: probes and helper invocations are
// wrapped by Middleware, which records one span, one set of metrics and one
// log entry per operation. All telemetry is written to stderr or remote
// exporters; stdout is reserved for the resolved credential.
package observe
