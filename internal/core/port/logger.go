package port

// Fields is a set of structured key-value pairs attached to a log record.
type Fields map[string]interface{}

// LoggerPort is the logging contract used by the core and the adapters.
type LoggerPort interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)

	// WithFields returns a child logger that adds fields to every record.
	WithFields(fields Fields) LoggerPort
}
