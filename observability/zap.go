package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger implements Logger on top of a zap.Logger.
type zapLogger struct {
	logger *zap.Logger
}

// NewZapLogger adapts a zap logger to the Logger interface.
// A nil logger yields a no-op logger.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		return NoopLogger()
	}
	return &zapLogger{logger: logger}
}

// NewZapProduction builds a JSON zap logger at the given level ("debug", "info", ...).
func NewZapProduction(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		//nolint:wrapcheck // zap error already names the bad level
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	//nolint:wrapcheck // Build only fails on invalid sink configuration
	return cfg.Build()
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug(msg, convertFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.logger.Info(msg, convertFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn(msg, convertFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.logger.Error(msg, convertFields(fields)...)
}

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{logger: l.logger.With(convertFields(fields)...)}
}

func convertFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
