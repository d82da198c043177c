// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoRows        = errors.New("no usable rows in source")
	ErrMissingColumn = errors.New("required column missing")
)

// Table is a CSV sheet addressed by header name.
type Table struct {
	columns map[string]int
	Rows    [][]string
}

// ReadCSV reads a header row followed by data rows. A UTF-8 byte order mark
// and surrounding spaces in header names are ignored.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &Table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name = strings.TrimSpace(name); name != "" {
			t.columns[name] = i
		}
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(t.Rows)+2, err)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// HasColumn reports whether the header names column.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.columns[column]
	return ok
}

// require checks that every column is present.
func (t *Table) require(columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}
	return nil
}

// Value returns a cell with surrounding spaces and quotes removed, or "" when
// the row is short or the column is unknown.
func (t *Table) Value(row []string, column string) string {
	i, ok := t.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(row[i]), `"`))
}

// positiveInt parses a string of digits greater than zero.
func positiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ReadSerialRange collects the serial numbers in a cell range such as
// "A1:R26". The sheet is looked up by name and falls back to its zero-based
// index. Numeric cells are truncated to whole numbers, text cells must be all
// digits, and anything else or non-positive is ignored. The result is sorted
// and free of duplicates. An empty sheet or range uses DefaultPartySheet and
// DefaultPartyRange.
func ReadSerialRange(path, sheet string, index int, cellRange string) ([]int, error) {
	if sheet == "" {
		sheet = DefaultPartySheet
	}
	if cellRange == "" {
		cellRange = DefaultPartyRange
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name, err := resolveSheet(f, sheet, index)
	if err != nil {
		return nil, err
	}

	fromCol, fromRow, toCol, toRow, err := parseRange(cellRange)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	for row := fromRow; row <= toRow; row++ {
		for col := fromCol; col <= toCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return nil, fmt.Errorf("invalid cell %d,%d: %w", col, row, err)
			}
			value, err := f.GetCellValue(name, cell, excelize.Options{RawCellValue: true})
			if err != nil {
				return nil, fmt.Errorf("failed to read %s!%s: %w", name, cell, err)
			}
			typ, err := f.GetCellType(name, cell)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s!%s: %w", name, cell, err)
			}
			if n, ok := serialFromCell(value, typ); ok {
				seen[n] = true
			}
		}
	}

	serials := make([]int, 0, len(seen))
	for n := range seen {
		serials = append(serials, n)
	}
	sort.Ints(serials)
	return serials, nil
}

func resolveSheet(f *excelize.File, sheet string, index int) (string, error) {
	sheets := f.GetSheetList()
	for _, s := range sheets {
		if s == sheet {
			return s, nil
		}
	}
	if index < 0 || index >= len(sheets) {
		return "", fmt.Errorf("sheet %q not found and index %d out of range (%d sheets)", sheet, index, len(sheets))
	}
	return sheets[index], nil
}

func parseRange(cellRange string) (fromCol, fromRow, toCol, toRow int, err error) {
	from, to, found := strings.Cut(strings.ToUpper(strings.TrimSpace(cellRange)), ":")
	if !found {
		to = from
	}
	if fromCol, fromRow, err = excelize.CellNameToCoordinates(from); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q: %w", cellRange, err)
	}
	if toCol, toRow, err = excelize.CellNameToCoordinates(to); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q: %w", cellRange, err)
	}
	if fromCol > toCol {
		fromCol, toCol = toCol, fromCol
	}
	if fromRow > toRow {
		fromRow, toRow = toRow, fromRow
	}
	return fromCol, fromRow, toCol, toRow, nil
}

func serialFromCell(value string, typ excelize.CellType) (int, bool) {
	value = strings.TrimSpace(value)
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 1 {
			return 0, false
		}
		return int(f), true
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return positiveInt(value)
	}
	return 0, false
}
