// Package logger defines the structured logging surface of the SDK. The
// client logs through this interface only, so applications can plug in their
// own backend or keep the default silence.
package logger

// Logger receives structured events from the client.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// NoopLogger discards everything. It is the default.
type NoopLogger struct{}

var _ Logger = NoopLogger{}

func (NoopLogger) Debug(string, map[string]any) {}
func (NoopLogger) Info(string, map[string]any)  {}
func (NoopLogger) Warn(string, map[string]any)  {}
func (NoopLogger) Error(string, map[string]any) {}
