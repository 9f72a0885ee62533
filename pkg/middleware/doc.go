// Package middleware provides action middleware for live sessions:
// structured logging, Prometheus metrics, and OpenTelemetry tracing around
// handler execution.
package middleware
