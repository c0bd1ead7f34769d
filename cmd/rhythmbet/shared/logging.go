package shared

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/rhythmbet/internal/fileutil"
)

// SetupLogger configures a charmbracelet logger with console output
func SetupLogger(w io.Writer, level log.Level, noColor bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	if noColor {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger
}

// SetupFileLogger configures a logger appending to path, for front-ends that
// own the terminal. The caller closes the returned file.
func SetupFileLogger(path string, level log.Level) (*log.Logger, *os.File, error) {
	if err := fileutil.EnsureDir(path); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.LogfmtFormatter,
	})
	return logger, f, nil
}

// DisableColor strips colour from every lipgloss style rendered afterwards.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
