package batch

import (
	"encoding/csv"
	"fmt"
	"io"
)

// LoadCSV reads the external record file into an immutable snapshot. The
// first row is the header; every following row becomes one Record keyed by
// header name. The reader is consumed exactly once.
func LoadCSV(r io.Reader) (*Source, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	src := &Source{Fields: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(src.Rows)+2, err)
		}
		record := make(Record, len(header))
		for i, name := range header {
			record[name] = row[i]
		}
		src.Rows = append(src.Rows, record)
	}

	return src, nil
}
