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

var fqExamples = [][2]string{
	{"sheetctl fq", "list every form and its summary row"},
	{"sheetctl fq -f name^7", "year 7 forms only"},
}

// FqCommandBuilder constructs the cli.Command for "fq", the forms query.
func FqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	runner := &QueryActionRunner[[]rows.Record]{
		CommandName: "fq",
		Examples:    fqExamples,
		Pipeline: func(_ *cli.Command, s *query.Service) (*pipeline.Pipeline, error) {
			return s.Forms(), nil
		},
		Shape: func(c *cli.Command, s *query.Service, forms []rows.Record) (any, attrs.AttrList) {
			l := s.Layout()
			return forms, BuildAttrs(c, l.NameField, l.RowField)
		},
	}

	return (&QueryCommandBuilder{
		Name:      "fq",
		Usage:     "forms query",
		UsageText: "sheetctl fq [options]",
		Action:    runner.Run,
		Examples:  fqExamples,
		Meta:      meta,
	}).Build()
}
