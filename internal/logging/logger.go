package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "CONTACTFORM_LOG_LEVEL"

// LogFileEnvVar redirects log output to a file instead of stderr.
const LogFileEnvVar = "CONTACTFORM_LOG_FILE"

// Initialize creates a new logger with the specified level writing to stderr.
// If level is empty, it checks CONTACTFORM_LOG_LEVEL.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	return InitializeWithOutput(level, "")
}

// InitializeWithOutput is Initialize with an explicit output path. An empty
// path falls back to CONTACTFORM_LOG_FILE and then stderr. The interactive
// form always passes a file so log lines never land on the terminal screen.
func InitializeWithOutput(level, path string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	zapLevel, err := ParseLevel(level)
	if err != nil {
		// Unknown level - use info as default when explicitly set to something
		zapLevel = zapcore.InfoLevel
	}

	if path == "" {
		path = os.Getenv(LogFileEnvVar)
	}
	output := "stderr"
	if path != "" {
		output = path
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	if path == "" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogFieldTransition logs a field status change.
func LogFieldTransition(field, from, to, trigger, reason string) {
	fields := []zap.Field{
		zap.String("field", field),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("trigger", trigger),
	}
	if reason != "" {
		fields = append(fields, zap.String("reason", reason))
	}
	Debug("Field state changed", fields...)
}

// LogButtonTransition logs a submit button state change.
func LogButtonTransition(from, to string) {
	Debug("Submit button state changed",
		zap.String("from", from),
		zap.String("to", to),
	)
}

// LogSubmissionAttempt logs the outcome of one endpoint attempt. Failed
// attempts are warnings since the next endpoint may still succeed.
func LogSubmissionAttempt(submissionID string, index int, endpoint, outcome string, statusCode int, latency time.Duration, err error) {
	fields := []zap.Field{
		zap.String("submission_id", submissionID),
		zap.Int("endpoint_index", index),
		zap.String("endpoint", endpoint),
		zap.String("outcome", outcome),
		zap.Duration("latency", latency),
	}
	if statusCode != 0 {
		fields = append(fields, zap.Int("status_code", statusCode))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
		Warn("Submission attempt failed", fields...)
		return
	}
	Info("Submission attempt succeeded", fields...)
}

// LogSubmissionExhausted logs a submission that no endpoint accepted.
func LogSubmissionExhausted(submissionID string, attempts int, err error) {
	Error("All submission endpoints failed",
		zap.String("submission_id", submissionID),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)
}

// LogHTTPRequest logs a request handled by the local intake service.
func LogHTTPRequest(remoteAddr, method, path string, status int, duration time.Duration) {
	Info("HTTP request handled",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", status),
		zap.Duration("duration", duration),
	)
}

// LogConnection logs a websocket feed connection event.
func LogConnection(remoteAddr string, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
