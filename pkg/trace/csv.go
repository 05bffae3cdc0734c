package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/tapdecode/pkg/decoder"
)

var csvColumns = []string{"start", "end", "tms", "tdi", "tdo"}

// CSVReader streams frames from a logic analyzer CSV export. The first row
// must name the start, end, tms, tdi and tdo columns; other columns are
// ignored.
type CSVReader struct {
	r     *csv.Reader
	index map[string]int
	row   int
}

// NewCSVReader reads the header row and prepares the column mapping.
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	index := make(map[string]int, len(csvColumns))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: csv header missing %q column", ErrMalformed, col)
		}
	}
	return &CSVReader{r: cr, index: index, row: 1}, nil
}

// Next implements decoder.Source.
func (c *CSVReader) Next() (decoder.Frame, error) {
	rec, err := c.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return decoder.Frame{}, io.EOF
		}
		return decoder.Frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	c.row++

	field := func(col string) (string, error) {
		i := c.index[col]
		if i >= len(rec) {
			return "", fmt.Errorf("%w: row %d: no %s column", ErrMalformed, c.row, col)
		}
		return rec[i], nil
	}

	var f decoder.Frame
	for _, col := range csvColumns {
		raw, err := field(col)
		if err != nil {
			return decoder.Frame{}, err
		}
		switch col {
		case "start", "end":
			sec, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return decoder.Frame{}, fmt.Errorf("%w: row %d: %s: %v", ErrMalformed, c.row, col, err)
			}
			if col == "start" {
				f.Start = secondsToDuration(sec)
			} else {
				f.End = secondsToDuration(sec)
			}
		default:
			lvl, err := ParseLevel(raw)
			if err != nil {
				return decoder.Frame{}, fmt.Errorf("%w: row %d: %s: %v", ErrMalformed, c.row, col, err)
			}
			switch col {
			case "tms":
				f.TMS = lvl
			case "tdi":
				f.TDI = lvl
			case "tdo":
				f.TDO = lvl
			}
		}
	}
	if f.End < f.Start {
		return decoder.Frame{}, fmt.Errorf("%w: row %d: end before start", ErrMalformed, c.row)
	}
	return f, nil
}
