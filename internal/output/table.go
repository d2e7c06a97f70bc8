// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/sheetctl/internal/attrs"
	"github.com/staranto/sheetctl/internal/config"
)

// bare is a table without visible borders.
func bare() *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false)
}

// DumpExamples prints a command/description table for --examples.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}

	t := bare().Headers("Command", "Description")
	for _, ex := range examples {
		t = t.Row(ex[0], ex[1])
	}
	fmt.Fprintln(w, t)
}

// useColor honors an explicit --color. A configured default only applies
// when w is a terminal.
func useColor(cmd *cli.Command, w io.Writer) bool {
	if !cmd.Bool("color") {
		return false
	}
	return cmd.IsSet("color") || isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// palette holds the header and alternating row styles of a result table.
type palette struct {
	header, even, odd lipgloss.Style
}

func newPalette(color bool) palette {
	base := lipgloss.NewStyle().Align(lipgloss.Left)
	p := palette{header: base, even: base, odd: base}
	if color {
		header, even, odd := getColors("colors")
		p.header = p.header.Foreground(lipgloss.Color(header))
		p.even = p.even.Foreground(lipgloss.Color(even))
		p.odd = p.odd.Foreground(lipgloss.Color(odd))
	}
	return p
}

func (p palette) style(row int) lipgloss.Style {
	switch {
	case row == table.HeaderRow:
		return p.header
	case row%2 == 0:
		return p.even
	}
	return p.odd
}

// TableWriter prints the included attrs of resultSet as aligned columns,
// separated by the configured padding (default 2). Blank cells show "-".
func TableWriter(resultSet []map[string]interface{}, al attrs.AttrList, color bool, titles bool, w io.Writer) {
	if len(resultSet) == 0 {
		return
	}

	pad, _ := config.GetInt("padding", 2)
	p := newPalette(color)

	t := bare().StyleFunc(func(row, col int) lipgloss.Style {
		s := p.style(row)
		if col > 0 {
			s = s.PaddingLeft(pad)
		}
		return s
	})

	if titles {
		var headers []string
		for _, a := range al {
			if a.Include {
				headers = append(headers, a.OutputKey)
			}
		}
		t = t.Headers(headers...)
	}

	for _, result := range resultSet {
		var cells []string
		for _, a := range al {
			if a.Include {
				cells = append(cells, InterfaceToString(result[a.OutputKey], "-"))
			}
		}
		t = t.Row(cells...)
	}

	fmt.Fprintln(w, t)
}

// getColors reads <key>.title, <key>.even and <key>.odd from the config.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(key+".title", "#f6be00")
	even, _ = config.GetString(key+".even", "#ffffff")
	odd, _ = config.GetString(key+".odd", "#00c8f0")
	return
}
