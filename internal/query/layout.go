// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/staranto/sheetctl/internal/rows"
	"github.com/staranto/sheetctl/internal/sheets"
)

// ErrLayout is returned by Validate for an incomplete layout.
var ErrLayout = errors.New("invalid layout")

// Layout is the business configuration describing where things live in the
// spreadsheet. It changes from year to year and is loaded from YAML.
type Layout struct {
	// Events is the range of the events list, header row first.
	Events string `yaml:"events"`
	// Forms is the range of the forms list, header row first.
	Forms string `yaml:"forms"`
	// YearGroups maps each allowed year to the cell range its results occupy
	// on an event's sheet.
	YearGroups map[string]string `yaml:"year_groups"`

	NameField  string `yaml:"name_field"`
	SheetField string `yaml:"sheet_field"`
	RowField   string `yaml:"row_field"`

	Render sheets.Render `yaml:"render"`

	Summary Summary `yaml:"summary"`
}

// Summary describes the per-form summary row.
type Summary struct {
	Sheet    string                 `yaml:"sheet"`
	FirstCol string                 `yaml:"first_col"`
	LastCol  string                 `yaml:"last_col"`
	Fields   map[string]rows.Offset `yaml:"fields"`
}

// WithDefaults returns a copy of l with empty field names filled in.
func (l Layout) WithDefaults() Layout {
	if l.NameField == "" {
		l.NameField = "name"
	}
	if l.SheetField == "" {
		l.SheetField = "sheet"
	}
	if l.RowField == "" {
		l.RowField = "row"
	}
	if l.Summary.FirstCol == "" {
		l.Summary.FirstCol = "A"
	}
	return l
}

// Validate reports the first missing piece of l.
func (l Layout) Validate() error {
	switch {
	case l.Events == "":
		return fmt.Errorf("%w: events range is required", ErrLayout)
	case l.Forms == "":
		return fmt.Errorf("%w: forms range is required", ErrLayout)
	case len(l.YearGroups) == 0:
		return fmt.Errorf("%w: at least one year group is required", ErrLayout)
	case l.Summary.Sheet == "":
		return fmt.Errorf("%w: summary sheet is required", ErrLayout)
	case l.Summary.LastCol == "":
		return fmt.Errorf("%w: summary last_col is required", ErrLayout)
	case len(l.Summary.Fields) == 0:
		return fmt.Errorf("%w: summary fields are required", ErrLayout)
	}
	return nil
}

// Years returns the allowed year groups, sorted.
func (l Layout) Years() []string {
	out := make([]string, 0, len(l.YearGroups))
	for y := range l.YearGroups {
		out = append(out, y)
	}
	sort.Strings(out)
	return out
}

// A1 joins a sheet name and a cell range, quoting the sheet when it holds
// anything but letters, digits or underscores.
func A1(sheet, cells string) string {
	plain := sheet != ""
	for _, r := range sheet {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			plain = false
			break
		}
	}
	if !plain {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + cells
}
