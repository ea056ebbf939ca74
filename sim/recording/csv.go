package recording

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
)

// CSVRecorder writes rows to a CSV file with a header line.
type CSVRecorder struct {
	path   string
	file   *os.File
	writer *csv.Writer

	rows       []Row
	bufferSize int
	closed     bool
}

// NewCSVRecorder creates (or truncates) the CSV file at path and writes
// the header. Buffered rows are flushed at process exit if Close was not
// called.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating results CSV: %w", err)
	}
	r := &CSVRecorder{
		path:       path,
		file:       file,
		writer:     csv.NewWriter(file),
		bufferSize: 1000,
	}
	if err := r.writer.Write(columns); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	atexit.Register(func() {
		if err := r.Close(); err != nil {
			logrus.Errorf("closing results CSV %s: %v", r.path, err)
		}
	})
	return r, nil
}

// Record buffers a row, flushing when the buffer is full.
func (r *CSVRecorder) Record(row Row) error {
	if r.closed {
		return fmt.Errorf("recording to closed CSV %s", r.path)
	}
	r.rows = append(r.rows, row)
	if len(r.rows) >= r.bufferSize {
		return r.Flush()
	}
	return nil
}

// Flush writes buffered rows to the file.
func (r *CSVRecorder) Flush() error {
	if r.closed {
		return nil
	}
	for _, row := range r.rows {
		if err := r.writer.Write(row.strings()); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	r.rows = nil
	r.writer.Flush()
	if err := r.writer.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (r *CSVRecorder) Close() error {
	if r.closed {
		return nil
	}
	flushErr := r.Flush()
	r.closed = true
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("closing CSV: %w", err)
	}
	if flushErr == nil {
		logrus.Debugf("Successfully wrote to '%s'", r.path)
	}
	return flushErr
}
