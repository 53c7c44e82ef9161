package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// OHLCV field suffixes used in table column names.
const (
	FieldOpen   = "Open"
	FieldHigh   = "High"
	FieldLow    = "Low"
	FieldClose  = "Close"
	FieldVolume = "Volume"
)

// OHLCVFields lists the per-instrument columns in table order.
var OHLCVFields = []string{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume}

// ColumnName builds the "{instrument}_{field}" column key.
func ColumnName(instrument, field string) string {
	return instrument + "_" + field
}

// Table is a date-indexed set of numeric columns. It backs both the
// daily/weekly market tables and the derived feature tables.
type Table struct {
	Index   []time.Time
	columns map[string][]float64
	order   []string
}

// NewTable creates an empty table over the given index.
func NewTable(index []time.Time) *Table {
	return &Table{
		Index:   index,
		columns: make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Index) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.order) }

// Columns returns column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns the values of a column. The slice is shared; callers must not mutate it.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.columns[name]
	return v, ok
}

// Set adds or replaces a column. Values must match the index length.
func (t *Table) Set(name string, values []float64) error {
	if len(values) != len(t.Index) {
		return fmt.Errorf("column %s: %d values for %d rows", name, len(values), len(t.Index))
	}
	if _, ok := t.columns[name]; !ok {
		t.order = append(t.order, name)
	}
	t.columns[name] = values
	return nil
}

// MustSet is Set for callers that built values from the table's own index.
func (t *Table) MustSet(name string, values []float64) {
	if err := t.Set(name, values); err != nil {
		panic(err)
	}
}

// Row returns the i-th row in column order.
func (t *Table) Row(i int) []float64 {
	row := make([]float64, len(t.order))
	for j, name := range t.order {
		row[j] = t.columns[name][i]
	}
	return row
}

// Rows returns the table as a row-major matrix.
func (t *Table) Rows() [][]float64 {
	out := make([][]float64, t.Len())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	idx := make([]time.Time, len(t.Index))
	copy(idx, t.Index)
	c := NewTable(idx)
	for _, name := range t.order {
		v := make([]float64, len(t.columns[name]))
		copy(v, t.columns[name])
		c.MustSet(name, v)
	}
	return c
}

// ReplaceUndefined sets every NaN or infinite cell to zero.
func (t *Table) ReplaceUndefined() {
	for _, name := range t.order {
		col := t.columns[name]
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				col[i] = 0
			}
		}
	}
}

// FillGaps forward-fills then back-fills NaN cells in every column.
func (t *Table) FillGaps() {
	for _, name := range t.order {
		col := t.columns[name]
		last := math.NaN()
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = last
				continue
			}
			last = v
		}
		next := math.NaN()
		for i := len(col) - 1; i >= 0; i-- {
			if math.IsNaN(col[i]) {
				col[i] = next
				continue
			}
			next = col[i]
		}
	}
}

// InstrumentSeries is one instrument's candles keyed by the logical instrument name.
type InstrumentSeries struct {
	Instrument string
	Candles    []Candle
}

// MergeSeries aligns several instruments on the union of their dates and
// fills the gaps forward then backward. Duplicate dates keep the last candle.
func MergeSeries(series []InstrumentSeries) *Table {
	seen := make(map[int64]time.Time)
	for _, s := range series {
		for _, c := range s.Candles {
			seen[c.Bucket.Unix()] = c.Bucket
		}
	}
	index := make([]time.Time, 0, len(seen))
	for _, ts := range seen {
		index = append(index, ts)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	pos := make(map[int64]int, len(index))
	for i, ts := range index {
		pos[ts.Unix()] = i
	}

	t := NewTable(index)
	for _, s := range series {
		cols := make(map[string][]float64, len(OHLCVFields))
		for _, f := range OHLCVFields {
			v := make([]float64, len(index))
			for i := range v {
				v[i] = math.NaN()
			}
			cols[f] = v
		}
		for _, c := range s.Candles {
			i := pos[c.Bucket.Unix()]
			cols[FieldOpen][i] = c.Open
			cols[FieldHigh][i] = c.High
			cols[FieldLow][i] = c.Low
			cols[FieldClose][i] = c.Close
			cols[FieldVolume][i] = c.Volume
		}
		for _, f := range OHLCVFields {
			t.MustSet(ColumnName(s.Instrument, f), cols[f])
		}
	}
	t.FillGaps()
	return t
}

// MarketData is what a market-data source returns for one run.
type MarketData struct {
	Daily  *Table
	Weekly *Table
	Stats  MarketStats
}
