// Package applog wraps log/slog with a rotating file sink (grounded on
// Mschirtzinger-jj-beads' go.mod, which pulls in lumberjack for exactly
// this purpose). tij never writes to stdout/stderr while the bubbletea
// alt-screen is active — doing so would corrupt the TUI — so the rotating
// file is the only sink for the life of the process.
package applog

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide structured logger, ready to use once Init
// has run. Defaults to a discard logger so calling applog.Log before
// Init (e.g. in a test) does not panic.
var Logger = slog.New(slog.NewTextHandler(os.Discard, nil))

// Init opens the rotating log file under ~/.local/state/tij/tij.log (or
// logDir if non-empty) and installs it as Logger. debug raises the level
// to slog.LevelDebug (main.go wires it from TIJ_DEBUG=1).
func Init(logDir string, debug bool) error {
	if logDir == "" {
		var err error
		logDir, err = defaultLogDir()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}

	sink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "tij.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	Logger = slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level}))
	return nil
}

func defaultLogDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "tij"), nil
}

// JJInvocation logs one executor round-trip: command, duration, and an
// exit classification string ("ok", "flag-unsupported", "immutable", ...).
func JJInvocation(command string, duration time.Duration, classification string) {
	Logger.Info("jj invocation", "command", command, "duration_ms", duration.Milliseconds(), "result", classification)
}

// ProtocolStep logs a mutation protocol's step transition (Gather,
// Dry-run, Classify, Confirm, Execute, Refresh).
func ProtocolStep(protocolName, step string, err error) {
	if err != nil {
		Logger.Warn("protocol step failed", "protocol", protocolName, "step", step, "error", err)
		return
	}
	Logger.Debug("protocol step", "protocol", protocolName, "step", step)
}
