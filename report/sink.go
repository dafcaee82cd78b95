package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

//go:generate go tool mockgen -destination mock_report.go -package report . Sink,Radio

// DefaultMaxSizeMB is the size at which the report file is rotated.
const DefaultMaxSizeMB = 50

// ErrSinkClosed is returned by Write after Close.
var ErrSinkClosed = errors.New("report sink closed")

// Sink stores reports.
type Sink interface {
	Write(r Report) error
	Close() error
}

// FileSink appends reports to a file, one JSON object per line. The file is
// rotated by lumberjack once it grows beyond its size limit.
type FileSink struct {
	mu     sync.Mutex
	out    io.WriteCloser
	closed bool
}

// NewFileSink opens path for appending. The file is created on first write.
// A maxSizeMB of zero selects DefaultMaxSizeMB.
func NewFileSink(path string, maxSizeMB, maxBackups int) *FileSink {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	return NewWriterSink(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	})
}

// NewWriterSink writes reports to w.
func NewWriterSink(w io.WriteCloser) *FileSink {
	return &FileSink{out: w}
}

func (s *FileSink) Write(r Report) error {
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if _, err := s.out.Write(line); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true
	return s.out.Close()
}
