package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/regression"
)

// WriteCSV writes the header "x label,y label" followed by one row per
// sample, y rounded to four decimals.
func WriteCSV(w io.Writer, set *regression.SampleSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{set.XLabel, set.YLabel}); err != nil {
		return err
	}
	for _, s := range set.Samples() {
		row := []string{
			strconv.FormatFloat(s.X, 'f', -1, 64),
			strconv.FormatFloat(s.Y, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV.
func ReadCSV(r io.Reader) (*regression.SampleSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty csv", dynamo.ErrInsufficientData)
	}

	set := regression.NewSampleSet(records[0][0], records[0][1])
	for i, record := range records[1:] {
		x, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		y, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		set.Add(x, y)
	}
	return set, nil
}
