package game

import (
	"bytes"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/rhythmbet/internal/fileutil"
)

// Snapshot is the rendered state of a game at the end of a turn.
type Snapshot struct {
	GameID string
	Turn   int
	At     time.Time
	Report string
}

// Sink consumes turn snapshots. The engine never reads them back.
type Sink interface {
	Publish(Snapshot) error
}

// LogSink writes snapshots to a logger.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink logging at info level.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(snap Snapshot) error {
	s.logger.Info("Turn complete", "game", snap.GameID, "turn", snap.Turn)
	s.logger.Print(snap.Report)
	return nil
}

// FileSink keeps every snapshot of the session in one file, rewriting it
// atomically after each turn so readers never see a partial report.
type FileSink struct {
	path string
	buf  bytes.Buffer
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Publish(snap Snapshot) error {
	fmt.Fprintf(&s.buf, "=== %s turn %d (%s) ===\n%s\n", snap.GameID, snap.Turn, snap.At.Format(time.RFC3339), snap.Report)
	if err := fileutil.WriteFileAtomic(s.path, s.buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
