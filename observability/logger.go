package observability

// Field is one key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// Field keys shared by the client, the inventory and the HTTP surface, so
// entries about one access point can be joined across components.
const (
	KeyComponent = "component"
	KeyError     = "error"
	KeySite      = "site"
	KeySerial    = "serial"
	KeyName      = "name"
)

// Component tags every entry of a logger with the part of the service
// that wrote it, e.g. "meraki", "resolver", "inventory".
func Component(name string) Field {
	return Field{Key: KeyComponent, Value: name}
}

// Err carries the message of err, or nil when err is nil.
func Err(err error) Field {
	if err == nil {
		return Field{Key: KeyError, Value: nil}
	}
	return Field{Key: KeyError, Value: err.Error()}
}

// Site names the site an entry is about.
func Site(site string) Field {
	return Field{Key: KeySite, Value: site}
}

// Serial names the access point an entry is about.
func Serial(serial string) Field {
	return Field{Key: KeySerial, Value: serial}
}

// Name carries an access point name.
func Name(name string) Field {
	return Field{Key: KeyName, Value: name}
}

// Logger is the structured logger every component writes to. NewZapLogger
// adapts zap; any other backend only needs these five methods.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a logger adding fields to every entry.
	With(fields ...Field) Logger
}

type noopLogger struct{}

// NoopLogger discards everything. Components fall back to it when no logger
// is configured.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NoopLogger() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(string, ...Field) {}
func (l *noopLogger) Info(string, ...Field)  {}
func (l *noopLogger) Warn(string, ...Field)  {}
func (l *noopLogger) Error(string, ...Field) {}

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l *noopLogger) With(...Field) Logger { return l }
