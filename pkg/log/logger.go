package log

// Logger receives CoIoT traffic events: CoAP messages in and out, announcer
// and listener state changes, and transport errors. The protocol layers call
// Log inline on their send and dispatch paths, so implementations must be
// safe for concurrent use and should buffer rather than block.
type Logger interface {
	Log(event Event)
}

// NoopLogger drops every event. The zero value is ready to use; it is what
// the protocol layers fall back to when no logger is configured.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
