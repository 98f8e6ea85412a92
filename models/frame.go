package models

import "sort"

// RawRecord is one source event exactly as parsed from a vendor JSON file.
type RawRecord map[string]any

// RawRecordSet is an ordered collection of raw records sharing one schema
// family. Order is file-discovery order and only matters as a deterministic
// tiebreak.
type RawRecordSet []RawRecord

// Frame is a flat tabular record set with an explicit column order. The
// column order is an output contract: transformers assemble it deliberately
// rather than inheriting whatever order the source maps happened to have.
type Frame struct {
	Columns []string
	Records []map[string]any
}

// NewFrame builds a Frame from raw records. Columns are the union of all
// record keys, sorted for determinism (Go map iteration order is random).
func NewFrame(raw RawRecordSet) *Frame {
	seen := make(map[string]struct{})
	for _, rec := range raw {
		for key := range rec {
			seen[key] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	records := make([]map[string]any, 0, len(raw))
	for _, rec := range raw {
		row := make(map[string]any, len(rec))
		for k, v := range rec {
			row[k] = v
		}
		records = append(records, row)
	}
	return &Frame{Columns: columns, Records: records}
}

// Len returns the number of records.
func (f *Frame) Len() int { return len(f.Records) }

// HasColumn reports whether the named column is part of the frame.
func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column at the end of the column order. No-op if the
// column already exists.
func (f *Frame) AddColumn(name string) {
	if !f.HasColumn(name) {
		f.Columns = append(f.Columns, name)
	}
}

// InsertAfter places newCols immediately after the named anchor column, in
// the given order. Columns already present are moved, not duplicated. If the
// anchor is missing the columns are appended at the end.
func (f *Frame) InsertAfter(anchor string, newCols ...string) {
	kept := make([]string, 0, len(f.Columns)+len(newCols))
	for _, c := range f.Columns {
		moved := false
		for _, n := range newCols {
			if c == n {
				moved = true
				break
			}
		}
		if !moved {
			kept = append(kept, c)
		}
	}

	out := make([]string, 0, len(kept)+len(newCols))
	inserted := false
	for _, c := range kept {
		out = append(out, c)
		if c == anchor {
			out = append(out, newCols...)
			inserted = true
		}
	}
	if !inserted {
		out = append(out, newCols...)
	}
	f.Columns = out
}

// DropColumns removes the named columns from the order and from every record.
func (f *Frame) DropColumns(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := f.Columns[:0]
	for _, c := range f.Columns {
		if _, gone := drop[c]; !gone {
			kept = append(kept, c)
		}
	}
	f.Columns = kept
	for _, rec := range f.Records {
		for n := range drop {
			delete(rec, n)
		}
	}
}

// RenameColumn renames a column in place, preserving its position.
func (f *Frame) RenameColumn(old, new string) {
	for i, c := range f.Columns {
		if c == old {
			f.Columns[i] = new
		}
	}
	for _, rec := range f.Records {
		if v, ok := rec[old]; ok {
			rec[new] = v
			delete(rec, old)
		}
	}
}

// DropAllNullColumns removes every column whose value is null in 100% of
// records and returns the dropped names.
func (f *Frame) DropAllNullColumns() []string {
	if len(f.Records) == 0 {
		return nil
	}
	var dropped []string
	for _, c := range f.Columns {
		allNull := true
		for _, rec := range f.Records {
			if v, ok := rec[c]; ok && v != nil {
				allNull = false
				break
			}
		}
		if allNull {
			dropped = append(dropped, c)
		}
	}
	if len(dropped) > 0 {
		f.DropColumns(dropped...)
	}
	return dropped
}

// Filter keeps only the records for which keep returns true.
func (f *Frame) Filter(keep func(rec map[string]any) bool) {
	kept := f.Records[:0]
	for _, rec := range f.Records {
		if keep(rec) {
			kept = append(kept, rec)
		}
	}
	f.Records = kept
}
