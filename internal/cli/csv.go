package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/houseprice/internal/domain/pricing"
)

// ErrNoRows is returned when a batch file holds no data rows.
var ErrNoRows = errors.New("batch file has no rows")

// ReadFeatures parses CSV rows of seven values. A first row whose cells are
// not all numbers is a header naming the columns by key or name, in any
// order. Without a header the columns are positional. Empty cells are missing.
func ReadFeatures(r io.Reader) ([]pricing.Features, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}

	columns := positional()
	if isHeader(records[0]) {
		columns, err = headerColumns(records[0])
		if err != nil {
			return nil, err
		}
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}

	out := make([]pricing.Features, 0, len(records))
	for n, rec := range records {
		line := n + 1
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("row %d: %d columns, want %d", line, len(rec), len(columns))
		}
		var f pricing.Features
		for col, attr := range columns {
			cell := strings.TrimSpace(rec[col])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: column %d: %q is not a number", line, col+1, cell)
			}
			f.Set(attr, v)
		}
		out = append(out, f)
	}
	return out, nil
}

func positional() []int {
	cols := make([]int, pricing.NumAttributes)
	for i := range cols {
		cols[i] = i
	}
	return cols
}

func isHeader(rec []string) bool {
	for _, cell := range rec {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return true
		}
	}
	return false
}

func headerColumns(rec []string) ([]int, error) {
	index := make(map[string]int, 2*pricing.NumAttributes)
	for i, a := range pricing.Attributes() {
		index[strings.ToLower(a.Key)] = i
		index[strings.ToLower(a.Name)] = i
	}

	cols := make([]int, len(rec))
	seen := make(map[int]bool, len(rec))
	for i, cell := range rec {
		attr, ok := index[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			return nil, fmt.Errorf("header: unknown column %q", cell)
		}
		if seen[attr] {
			return nil, fmt.Errorf("header: column %q repeated", cell)
		}
		seen[attr] = true
		cols[i] = attr
	}
	return cols, nil
}
