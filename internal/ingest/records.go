// Package ingest loads the input table of record numbers and entity codes.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rshade/wikilink/internal/engine"
	"github.com/rshade/wikilink/internal/logging"
)

// Default input column names.
const (
	DefaultRecordColumn = "recordnumber"
	DefaultCodeColumn   = "qcode"
)

// ErrMissingColumn indicates that a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// Columns names the header cells holding the record id and the entity code.
type Columns struct {
	RecordID   string
	EntityCode string
}

// DefaultColumns returns the standard recordnumber/qcode layout.
func DefaultColumns() Columns {
	return Columns{RecordID: DefaultRecordColumn, EntityCode: DefaultCodeColumn}
}

func (c Columns) withDefaults() Columns {
	if c.RecordID == "" {
		c.RecordID = DefaultRecordColumn
	}
	if c.EntityCode == "" {
		c.EntityCode = DefaultCodeColumn
	}
	return c
}

// LoadRecordsWithContext reads the CSV file at path and returns its records in row order.
func LoadRecordsWithContext(ctx context.Context, path string, cols Columns) ([]engine.InputRecord, error) {
	log := logging.FromContext(ctx)
	log.Debug().
		Ctx(ctx).
		Str("component", "ingest").
		Str("operation", "load_records").
		Str("input_path", path).
		Msg("loading input records")

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "ingest").
			Err(err).
			Str("input_path", path).
			Msg("failed to read input file")
		return nil, fmt.Errorf("reading input file: %w", err)
	}

	return ParseRecordsWithContext(ctx, data, cols)
}

// ParseRecordsWithContext parses CSV bytes into input records.
//
// The header must contain both configured columns, otherwise an error wrapping
// ErrMissingColumn is returned. An empty document or a header without rows
// yields no records and no error. Rows shorter than the header are padded.
func ParseRecordsWithContext(ctx context.Context, data []byte, cols Columns) ([]engine.InputRecord, error) {
	log := logging.FromContext(ctx)
	cols = cols.withDefaults()

	decoded, encoding, err := DetectAndDecode(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		log.Debug().Ctx(ctx).Str("component", "ingest").Msg("input is empty")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	idIdx, codeIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case cols.RecordID:
			idIdx = i
		case cols.EntityCode:
			codeIdx = i
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cols.RecordID)
	}
	if codeIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cols.EntityCode)
	}

	var records []engine.InputRecord
	padded := 0
	for {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("reading input rows: %w", readErr)
		}

		if len(row) < len(header) {
			padded++
		}
		records = append(records, engine.InputRecord{
			RecordID:   cell(row, idIdx),
			EntityCode: cell(row, codeIdx),
		})
	}

	event := log.Debug()
	if padded > 0 {
		event = log.Warn().Int("short_rows", padded)
	}
	event.Ctx(ctx).
		Str("component", "ingest").
		Str("encoding", encoding).
		Int("record_count", len(records)).
		Msg("input records parsed")

	return records, nil
}

// cell returns the trimmed value at i, or "" when the row is too short.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
