package tables

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// WriteRecords writes rows of cells as CSV to w
func WriteRecords(w io.Writer, records [][]string) error {
	writer := csv.NewWriter(w)

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

// FormatRecords renders rows of cells as CSV bytes
func FormatRecords(records [][]string) ([]byte, error) {
	var buffer bytes.Buffer
	if err := WriteRecords(&buffer, records); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
