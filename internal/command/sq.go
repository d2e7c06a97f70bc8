// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/staranto/sheetctl/internal/attrs"
	"github.com/staranto/sheetctl/internal/meta"
	"github.com/staranto/sheetctl/internal/pipeline"
	"github.com/staranto/sheetctl/internal/query"
	"github.com/staranto/sheetctl/internal/rows"
)

var sqExamples = [][2]string{
	{"sheetctl sq -F 7A", "summary row for form 7A"},
	{"sheetctl sq -F 7a -o yaml", "the same as YAML"},
}

// flattenSummary joins the form's name onto its summary fields, giving one
// row.
func flattenSummary(res query.FormSummary, l query.Layout) rows.Record {
	row := rows.Record{l.NameField: res.Form[l.NameField]}
	for k, v := range res.Summary {
		row[k] = v
	}
	return row
}

// summaryFields are the configured summary fields in column order.
func summaryFields(l query.Layout) []string {
	fields := make([]string, 0, len(l.Summary.Fields))
	for f := range l.Summary.Fields {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		a, b := l.Summary.Fields[fields[i]], l.Summary.Fields[fields[j]]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return fields[i] < fields[j]
	})
	return fields
}

// SqCommandAction is the action handler for the "sq" subcommand.
func SqCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitExamples(cmd, sqExamples) {
		return nil
	}
	if err := RequiredFlagsValidator(cmd, "form"); err != nil {
		return err
	}

	runner := &QueryActionRunner[query.FormSummary]{
		CommandName: "sq",
		Examples:    sqExamples,
		Pipeline: func(c *cli.Command, s *query.Service) (*pipeline.Pipeline, error) {
			return s.FormSummary(c.String("form")), nil
		},
		Shape: func(c *cli.Command, s *query.Service, res query.FormSummary) (any, attrs.AttrList) {
			l := s.Layout()
			return flattenSummary(res, l), RecordAttrs(c, nil, append([]string{l.NameField}, summaryFields(l)...)...)
		},
	}
	return runner.Run(ctx, cmd)
}

// SqCommandBuilder constructs the cli.Command for "sq", the form summary
// query.
func SqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "sq",
		Usage:     "form summary query",
		UsageText: "sheetctl sq --form NAME [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "form",
				Aliases: []string{"F"},
				Usage:   "form name, matched case-insensitively",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
		},
		Examples: sqExamples,
		Action:   SqCommandAction,
		Meta:     meta,
	}).Build()
}
