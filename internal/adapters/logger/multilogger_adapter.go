package logger_adapter

import (
	"errors"

	"listing-service/internal/core/port"
)

// MultiLoggerAdapter writes every record to each of its sinks.
type MultiLoggerAdapter struct {
	sinks []port.LoggerPort
}

// NewMultiloggerAdapter combines sinks. Nil sinks are skipped, nested
// multi-loggers are flattened and a single remaining sink is returned as is.
func NewMultiloggerAdapter(sinks ...port.LoggerPort) (port.LoggerPort, error) {
	flat := make([]port.LoggerPort, 0, len(sinks))
	for _, s := range sinks {
		switch v := s.(type) {
		case nil:
		case *MultiLoggerAdapter:
			flat = append(flat, v.sinks...)
		default:
			flat = append(flat, v)
		}
	}

	switch len(flat) {
	case 0:
		return nil, errors.New("multilogger: at least one logger is required")
	case 1:
		return flat[0], nil
	}
	return &MultiLoggerAdapter{sinks: flat}, nil
}

func (m *MultiLoggerAdapter) each(write func(port.LoggerPort)) {
	for _, s := range m.sinks {
		write(s)
	}
}

func (m *MultiLoggerAdapter) Info(msg string, fields port.Fields) {
	m.each(func(s port.LoggerPort) { s.Info(msg, fields) })
}

func (m *MultiLoggerAdapter) Warn(msg string, fields port.Fields) {
	m.each(func(s port.LoggerPort) { s.Warn(msg, fields) })
}

func (m *MultiLoggerAdapter) Error(msg string, err error, fields port.Fields) {
	m.each(func(s port.LoggerPort) { s.Error(msg, err, fields) })
}

func (m *MultiLoggerAdapter) Debug(msg string, fields port.Fields) {
	m.each(func(s port.LoggerPort) { s.Debug(msg, fields) })
}

// WithFields enriches every sink; the result is again a MultiLoggerAdapter.
func (m *MultiLoggerAdapter) WithFields(fields port.Fields) port.LoggerPort {
	children := &MultiLoggerAdapter{sinks: make([]port.LoggerPort, 0, len(m.sinks))}
	m.each(func(s port.LoggerPort) { children.sinks = append(children.sinks, s.WithFields(fields)) })
	return children
}
