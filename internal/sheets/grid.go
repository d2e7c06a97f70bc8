// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package sheets

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// Grid is the two-dimensional cell array returned by a range fetch, ordered
// per the requested Dimension. Cells are float64, string or bool.
type Grid [][]any

// Rows returns the number of major-dimension entries.
func (g Grid) Rows() int {
	return len(g)
}

// At returns the cell at g[i][j], or nil when the position is outside the
// grid. The backend trims trailing empty cells so ragged rows are normal.
func (g Grid) At(i, j int) any {
	if i < 0 || i >= len(g) || j < 0 || j >= len(g[i]) {
		return nil
	}
	return g[i][j]
}

// String renders the cell at g[i][j] as text. Missing cells are "".
func (g Grid) String(i, j int) string {
	switch v := g.At(i, j).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// ParseGrid extracts the "values" array from a values API response body.
// A response without values (an empty range) is an empty Grid.
func ParseGrid(body []byte) Grid {
	values := gjson.GetBytes(body, "values")
	if !values.Exists() {
		return Grid{}
	}

	grid := make(Grid, 0, len(values.Array()))
	for _, row := range values.Array() {
		cells := make([]any, 0, len(row.Array()))
		for _, cell := range row.Array() {
			cells = append(cells, cellValue(cell))
		}
		grid = append(grid, cells)
	}
	return grid
}

func cellValue(cell gjson.Result) any {
	switch cell.Type {
	case gjson.Number:
		return cell.Float()
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Null:
		return ""
	default:
		return cell.String()
	}
}
