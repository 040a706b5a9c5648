// Package otel bridges sessionkit's in-process counters to an OpenTelemetry
// meter. Counters are exported as observable instruments: a registered
// callback reads a metrics snapshot on every collection cycle, so the
// session hot paths never touch the OTel SDK.
package otel
