// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package rows shapes raw grids into records.
package rows

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/staranto/sheetctl/internal/sheets"
)

var (
	// ErrNoHeader is returned by Records for a grid without a header row.
	ErrNoHeader = errors.New("grid has no header row")
	// ErrOffset is returned by Keyed when an offset falls outside the grid.
	ErrOffset = errors.New("offset outside grid")
)

// Record is one row keyed by field name.
type Record map[string]any

// String returns the field as a string, or "" when absent.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Fields returns the record's field names, sorted.
func (r Record) Fields() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Offset addresses one cell of a grid.
type Offset struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

// Records treats the first grid row as field names and returns one record per
// remaining row. Short rows leave trailing fields empty. Blank header cells
// are skipped.
func Records(g sheets.Grid) ([]Record, error) {
	if g.Rows() == 0 {
		return nil, ErrNoHeader
	}

	header := make([]string, len(g[0]))
	for j := range g[0] {
		header[j] = strings.TrimSpace(g.String(0, j))
	}

	out := make([]Record, 0, g.Rows()-1)
	for i := 1; i < g.Rows(); i++ {
		r := make(Record, len(header))
		for j, name := range header {
			if name == "" {
				continue
			}
			v := g.At(i, j)
			if v == nil {
				v = ""
			}
			r[name] = v
		}
		out = append(out, r)
	}
	return out, nil
}

// Keyed builds a single record from fixed cell offsets.
func Keyed(g sheets.Grid, fields map[string]Offset) (Record, error) {
	r := make(Record, len(fields))
	for name, off := range fields {
		if off.Row < 0 || off.Row >= g.Rows() || off.Col < 0 || off.Col >= len(g[off.Row]) {
			return nil, fmt.Errorf("%w: %s at %d,%d", ErrOffset, name, off.Row, off.Col)
		}
		r[name] = g[off.Row][off.Col]
	}
	return r, nil
}

// Find returns the first record whose field equals value, compared as
// trimmed case-insensitive strings.
func Find(records []Record, field, value string) (Record, int, bool) {
	want := strings.TrimSpace(value)
	for i, r := range records {
		if strings.EqualFold(strings.TrimSpace(r.String(field)), want) {
			return r, i, true
		}
	}
	return nil, -1, false
}

// Column returns the field of every record as strings, in order.
func Column(records []Record, field string) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.String(field))
	}
	return out
}
