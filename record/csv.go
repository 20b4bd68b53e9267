package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrSourceUnavailable is returned when the upstream row source cannot be
// read at all. It is the only failure this package escalates; individual
// malformed rows are dropped silently during normalization.
var ErrSourceUnavailable = errors.New("row source unavailable")

// ReadCSV parses a header-driven CSV snapshot into raw rows. Cells stay
// strings; coercion happens in Normalize. Any read failure wraps
// ErrSourceUnavailable; there are no partial results.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are handled per-cell

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return []Row{}, nil
		}
		return nil, fmt.Errorf("%w: reading header: %v", ErrSourceUnavailable, err)
	}

	var rows []Row
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading rows: %v", ErrSourceUnavailable, err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i < len(cells) {
				row[name] = cells[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadCSVFile opens and parses a CSV snapshot from disk.
func ReadCSVFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrSourceUnavailable, path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
