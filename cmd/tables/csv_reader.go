package tables

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Reader reads CSV input into a Table with header detection
type Reader struct {
	reader  *csv.Reader
	closer  io.ReadCloser
	headers []string
}

// NewReader creates a new CSV table reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		reader: csv.NewReader(r),
		closer: nil,
	}
}

// NewReaderWithCloser creates a new CSV table reader with a closable reader
func NewReaderWithCloser(r io.ReadCloser) *Reader {
	return &Reader{
		reader: csv.NewReader(r),
		closer: r,
	}
}

// ReadAll reads the header row and every data row into a Table.
// Column order is preserved, blank cells stay empty strings, and rows
// whose cells are all empty are skipped. Ragged rows are an error
// (csv.Reader enforces the header's field count).
func (r *Reader) ReadAll() (*Table, error) {
	headers, err := r.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	r.headers = headers

	table := &Table{
		Columns: headers,
		Rows:    make([]Row, 0),
	}

	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		if isBlank(record) {
			continue
		}

		row := make(Row, len(headers))
		for i, value := range record {
			row[headers[i]] = value
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Close closes the underlying reader if it's closable
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if cell != "" {
			return false
		}
	}
	return true
}
