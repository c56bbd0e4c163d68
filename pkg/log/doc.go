// Package log provides structured protocol event logging for the CoIoT
// status server.
//
// Protocol layers emit Event values describing announcements, inbound
// requests, responses, listener state changes and errors. Applications
// choose where events go by supplying a Logger implementation:
//
//   - NoopLogger discards everything (the default).
//   - FileLogger appends CBOR-encoded events to a file for later analysis.
//   - SlogAdapter mirrors events to a log/slog logger for console output.
//   - MultiLogger fans out to several loggers at once.
//
// The CBOR file format uses integer map keys for compactness; Reader
// decodes files written by FileLogger.
package log
