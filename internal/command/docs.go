// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// FlagDoc describes one visible flag.
type FlagDoc struct {
	Names []string
	Usage string
}

// CommandDoc is the documentation of one subcommand, as gathered from the
// command tree.
type CommandDoc struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []FlagDoc
	Examples  [][2]string
}

// Docs walks the subcommands of app in order.
func Docs(app *cli.Command) (docs []CommandDoc) {
	for _, c := range app.Commands {
		if c.Hidden {
			continue
		}

		d := CommandDoc{
			Name:      c.Name,
			Usage:     c.Usage,
			UsageText: c.UsageText,
		}
		if ex, ok := c.Metadata["examples"].([][2]string); ok {
			d.Examples = ex
		}

		for _, f := range c.Flags {
			if v, ok := f.(interface{ IsVisible() bool }); ok && !v.IsVisible() {
				continue
			}
			fd := FlagDoc{Names: f.Names()}
			if u, ok := f.(interface{ GetUsage() string }); ok {
				fd.Usage = u.GetUsage()
			}
			d.Flags = append(d.Flags, fd)
		}

		docs = append(docs, d)
	}
	return
}

// Title is the page title, e.g. "sheetctl-rq".
func (d CommandDoc) Title() string {
	return "sheetctl-" + d.Name
}

// Markdown renders d in the md2man dialect: a title block, then NAME,
// SYNOPSIS, OPTIONS and EXAMPLES sections.
func (d CommandDoc) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%% %s 1\n\n", strings.ToUpper(d.Title()))
	b.WriteString("# NAME\n\n")
	fmt.Fprintf(&b, "%s - %s\n\n", d.Title(), d.Usage)

	if d.UsageText != "" {
		b.WriteString("# SYNOPSIS\n\n")
		fmt.Fprintf(&b, "**%s**\n\n", d.UsageText)
	}

	if len(d.Flags) > 0 {
		b.WriteString("# OPTIONS\n\n")
		for _, f := range d.Flags {
			var names []string
			for _, n := range f.Names {
				if len(n) == 1 {
					names = append(names, "-"+n)
				} else {
					names = append(names, "--"+n)
				}
			}
			fmt.Fprintf(&b, "**%s**\n: %s\n\n", strings.Join(names, ", "), f.Usage)
		}
	}

	if len(d.Examples) > 0 {
		b.WriteString("# EXAMPLES\n\n")
		for _, ex := range d.Examples {
			fmt.Fprintf(&b, "%s:\n\n    %s\n\n", capitalize(ex[1]), ex[0])
		}
	}

	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
