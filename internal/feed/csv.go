package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

// ReadCSV reads a team game log with a header row. Column names must match
// the feed columns exactly; other columns are ignored. The returned log
// records which feed columns the file supplied.
func ReadCSV(r io.Reader) (metrics.GameLog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	names, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return metrics.GameLog{}, errors.New("reading csv: no header row")
	}
	if err != nil {
		return metrics.GameLog{}, fmt.Errorf("reading csv header: %w", err)
	}
	h := readHeader(names)

	log := metrics.GameLog{Columns: h.columns}
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return metrics.GameLog{}, fmt.Errorf("reading csv: %w", err)
		}
		r, err := h.decode(record, row)
		if err != nil {
			return metrics.GameLog{}, err
		}
		log.Rows = append(log.Rows, r)
	}
	return log, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string) (metrics.GameLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return metrics.GameLog{}, err
	}
	defer f.Close()

	log, err := ReadCSV(f)
	if err != nil {
		return metrics.GameLog{}, fmt.Errorf("%s: %w", path, err)
	}
	return log, nil
}
