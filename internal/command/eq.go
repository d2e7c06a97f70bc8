// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"github.com/urfave/cli/v3"

	"github.com/staranto/sheetctl/internal/attrs"
	"github.com/staranto/sheetctl/internal/meta"
	"github.com/staranto/sheetctl/internal/pipeline"
	"github.com/staranto/sheetctl/internal/query"
	"github.com/staranto/sheetctl/internal/rows"
)

var eqExamples = [][2]string{
	{"sheetctl eq", "list every event"},
	{"sheetctl eq -f sheet^Track", "events on sheets starting with Track"},
	{"sheetctl eq -a kind -s -kind,name", "add the kind column and sort by it"},
	{"sheetctl eq --refresh", "refetch the events list"},
}

// EqCommandBuilder constructs the cli.Command for "eq", the events query.
func EqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	runner := &QueryActionRunner[[]rows.Record]{
		CommandName: "eq",
		Examples:    eqExamples,
		Pipeline: func(_ *cli.Command, s *query.Service) (*pipeline.Pipeline, error) {
			return s.Events(), nil
		},
		Shape: func(c *cli.Command, s *query.Service, events []rows.Record) (any, attrs.AttrList) {
			l := s.Layout()
			return events, BuildAttrs(c, l.NameField, l.SheetField)
		},
	}

	return (&QueryCommandBuilder{
		Name:      "eq",
		Usage:     "events query",
		UsageText: "sheetctl eq [options]",
		Action:    runner.Run,
		Examples:  eqExamples,
		Meta:      meta,
	}).Build()
}
