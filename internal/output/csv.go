// Package output writes resolved records to the results table and to a
// human-readable transcript.
package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rshade/wikilink/internal/engine"
)

// ErrSinkWrite indicates the results sink could not be written.
var ErrSinkWrite = errors.New("writing results failed")

// Header is the fixed column layout of the results table.
//
//nolint:gochecknoglobals // Fixed output schema.
var Header = []string{"recordnumber", "qcode", "prop_uri", "full_url"}

// CSVSink appends resolved records to a CSV table, flushing after each row so
// that an aborted run leaves every already-resolved record on disk.
type CSVSink struct {
	w      *csv.Writer
	closer io.Closer
	rows   int
}

// NewCSVSink writes the header to w and returns a sink for the rows.
// If w is an io.Closer it is closed by Close.
func NewCSVSink(w io.Writer) (*CSVSink, error) {
	s := &CSVSink{w: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	if err := s.writeRow(Header); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateCSVFile creates (or truncates) path and returns a sink writing to it.
func CreateCSVFile(path string) (*CSVSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: creating output directory: %w", ErrSinkWrite, err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // Output path is user supplied by design.
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}

	sink, err := NewCSVSink(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return sink, nil
}

// Write appends one record.
func (s *CSVSink) Write(rec engine.ResolvedRecord) error {
	if err := s.writeRow([]string{rec.RecordID, rec.EntityCode, rec.PropertyURI, rec.FullURL}); err != nil {
		return err
	}
	s.rows++
	return nil
}

// Rows returns the number of records written, excluding the header.
func (s *CSVSink) Rows() int {
	return s.rows
}

// Close flushes pending output and closes the underlying writer.
// It is safe to call more than once.
func (s *CSVSink) Close() error {
	s.w.Flush()
	flushErr := s.w.Error()

	var closeErr error
	if s.closer != nil {
		closeErr = s.closer.Close()
		s.closer = nil
	}

	if err := errors.Join(flushErr, closeErr); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	return nil
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	return nil
}
