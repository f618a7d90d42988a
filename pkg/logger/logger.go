// Package logger is the process-wide structured logger of the map admin
// server. Mutations log the acting username next to what changed, and HTTP
// access lines carry the request id.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "space-map-admin"

// log is a no-op until Init runs so packages can log from tests.
var log = zap.NewNop().Sugar()

// levelFor maps LOG_LEVEL to a zap level. Anything unrecognised logs at info.
func levelFor(logLevel string) zapcore.Level {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil || level < zapcore.DebugLevel || level > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return level
}

// Init builds the JSON logger. Every line is tagged with the service name and
// environment so dashboard and import-script logs can be told apart.
func Init(logLevel, appEnv string) {
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(levelFor(logLevel)),
		Development:      appEnv == "development",
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]interface{}{
			"service": serviceName,
			"env":     appEnv,
		},
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := config.Build()
	if err != nil {
		log = zap.NewExample().Sugar()
		log.Warnw("Failed to initialize custom logger, using fallback", "error", err)
		return
	}

	log = built.Sugar()
}

func Debug(msg string, keysAndValues ...interface{}) {
	log.Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	log.Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	log.Warnw(msg, keysAndValues...)
}

// Error logs a failure that was handled, such as a 5xx response or a
// Telegram broadcast that did not go out.
func Error(msg string, keysAndValues ...interface{}) {
	log.Errorw(msg, keysAndValues...)
}

// Fatal logs and exits. Only startup code in cmd/ and scripts/ calls it.
func Fatal(msg string, err error) {
	log.Fatalw(msg, "error", err)
}

// Desugar exposes the underlying zap logger for the HTTP access log.
func Desugar() *zap.Logger {
	return log.Desugar()
}

func Sync() {
	_ = log.Sync()
}
