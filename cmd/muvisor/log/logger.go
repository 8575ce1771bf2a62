// Package log sets up the process-wide slog logger: console plus a buffered
// session log file, flushed on demand so panic handlers can persist the tail.
package log

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	logFile *os.File
	writer  *bufio.Writer
)

// NewLogger builds the logger and makes it the slog default. The session log
// goes to saveDirectory/<prefix>muvisor-<timestamp>.log; debug toggles the
// level.
func NewLogger(debug bool, saveDirectory string, prefix string) (*slog.Logger, error) {
	if saveDirectory == "" {
		saveDirectory = "logs"
	}
	if err := os.MkdirAll(saveDirectory, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", saveDirectory, err)
	}

	fileName := filepath.Join(saveDirectory, fmt.Sprintf("%smuvisor-%s.log", prefix, time.Now().Format("2006-01-02-15-04-05")))
	f, err := os.Create(fileName)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}

	mu.Lock()
	logFile = f
	writer = bufio.NewWriter(f)
	out := io.MultiWriter(os.Stdout, writer)
	mu.Unlock()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return logger, nil
}

// FlushLog forces buffered log output to disk. Safe to call from panic
// handlers.
func FlushLog() {
	mu.Lock()
	defer mu.Unlock()
	if writer != nil {
		_ = writer.Flush()
	}
}

// FlushAndClose flushes and closes the session log file.
func FlushAndClose() {
	mu.Lock()
	defer mu.Unlock()
	if writer != nil {
		_ = writer.Flush()
		writer = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
