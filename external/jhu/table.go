package jhu

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// RawTable - one parsed wide source table: a header plus string cells. The
// pipeline owns all typing and reshaping; the loader only guarantees a
// rectangular table with the expected columns present.
type RawTable struct {
	Columns []string   `json:"columns" bson:"columns"`
	Rows    [][]string `json:"rows" bson:"rows"`

	index map[string]int
}

// ParseCSV parses a CSV payload into a RawTable.
func ParseCSV(data []byte) (*RawTable, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("empty table")
	}

	header := records[0]
	rows := records[1:]
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", i+1, len(row), len(header))
		}
	}

	return NewRawTable(header, rows), nil
}

// NewRawTable builds a table and its column index. Snapshot restores use it
// to rebuild the index the BSON round trip loses.
func NewRawTable(columns []string, rows [][]string) *RawTable {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &RawTable{Columns: columns, Rows: rows, index: index}
}

// ColumnIndex returns the position of a named column.
func (t *RawTable) ColumnIndex(name string) (int, bool) {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Columns))
		for i, c := range t.Columns {
			t.index[c] = i
		}
	}
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the value of a named column in one row, empty string if the
// column does not exist.
func (t *RawTable) Cell(row []string, column string) string {
	i, ok := t.ColumnIndex(column)
	if !ok {
		return ""
	}
	return row[i]
}

// dateColumnLayout - CSSE date headers look like "1/22/20"
const dateColumnLayout = "1/2/06"

// DateColumns returns the positions and parsed dates of every date-shaped
// column, in header order. CSSE tables keep all date columns rightmost, but
// detection is by shape so identity columns never leak in.
func (t *RawTable) DateColumns() ([]int, []time.Time) {
	var positions []int
	var dates []time.Time
	for i, col := range t.Columns {
		d, err := time.Parse(dateColumnLayout, col)
		if err != nil {
			continue
		}
		positions = append(positions, i)
		dates = append(dates, d)
	}
	return positions, dates
}

// Int64Cell parses a numeric cell. CSSE cells are occasionally written in
// float form ("1001.0"); both spellings parse to the integer value.
func Int64Cell(cell string) (int64, bool) {
	if cell == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return v, true
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

// FloatCell parses a coordinate cell.
func FloatCell(cell string) (float64, bool) {
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
