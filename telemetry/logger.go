// Package telemetry emits the run's event stream: a structured log line
// for every turn-level event, with optional mirroring of durable events
// (runs, actions, snapshots, frames) into the SQLite audit trail.
//
// Information Hiding:
// - Encoder and level wiring hidden behind NewLogger
// - Screenshot and image payloads are never logged raw, only as length markers
// - Audit mirroring is best-effort; storage errors never fail a turn
package telemetry

import (
	"errors"
	"os"
	"strconv"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the console logger used by the CLI. Verbose mode
// lowers the level to debug; everything goes to stderr so run results
// on stdout stay clean.
func NewLogger(verbose bool) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// Sync flushes buffered log entries.
// Ignores sync errors on stdout/stderr (common on Linux).
func Sync(log *zap.Logger) error {
	err := log.Sync()
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

// isStdoutSyncError checks if error is a harmless stdout/stderr sync error.
// On Linux, syncing stdout/stderr returns EINVAL or ENOTTY which are safe to ignore.
func isStdoutSyncError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EINVAL || errno == syscall.ENOTTY
	}
	return false
}

// RedactedBytes creates a Zap field that records only the payload size.
// Used for screenshots and other binary blobs that must never reach logs.
func RedactedBytes(key string, n int) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(n)+"]")
}
