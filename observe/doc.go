// Package observe provides logging, metrics, and tracing for the client.
//
// It defines the Logger sink the client reports through, OpenTelemetry-backed
// request metrics and spans, and an Observer that wires providers together
// for host processes. All telemetry is best-effort and never fails a call.
package observe
