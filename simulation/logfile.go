package simulation

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LogFileLayout is the time layout log files are named after.
const LogFileLayout = "2006-01-02 15:04:05"

// LogFileName returns the name of the log file of a batch started at now.
func LogFileName(dir string, now time.Time) string {
	return filepath.Join(dir, now.Format(LogFileLayout)+".log")
}

// NewLogFile creates the directory if needed and opens the log file of a batch
// started at now. Batches started within the same second share the file.
func NewLogFile(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(LogFileName(dir, now),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return f, nil
}
