// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sheetctl/internal/attrs"
	"github.com/staranto/sheetctl/internal/differ"
	"github.com/staranto/sheetctl/internal/meta"
	"github.com/staranto/sheetctl/internal/pipeline"
	"github.com/staranto/sheetctl/internal/query"
)

var rqExamples = [][2]string{
	{"sheetctl rq -e 100m -y 7", "year 7 results for the 100m"},
	{"sheetctl rq -e 'long jump' -y 8 -s -points", "best first"},
	{"sheetctl rq -e 100m -y 7 --diff", "what changed since the cached copy"},
	{"sheetctl rq -e 100m -y 7 -o json", "results as JSON"},
}

// RqCommandAction is the action handler for the "rq" subcommand. It emits an
// event's results for a year group, or with --diff the change between the
// cached and live results.
func RqCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitExamples(cmd, rqExamples) {
		return nil
	}
	if err := RequiredFlagsValidator(cmd, "event", "year"); err != nil {
		return err
	}

	if cmd.Bool("diff") {
		return RqDiffAction(ctx, cmd)
	}

	runner := &QueryActionRunner[query.EventResults]{
		CommandName: "rq",
		Examples:    rqExamples,
		Pipeline:    rqPipeline,
		Shape: func(c *cli.Command, _ *query.Service, res query.EventResults) (any, attrs.AttrList) {
			return res.Results, RecordAttrs(c, res.Results)
		},
	}
	return runner.Run(ctx, cmd)
}

func rqPipeline(c *cli.Command, s *query.Service) (*pipeline.Pipeline, error) {
	return s.EventResults(c.String("event"), c.String("year")), nil
}

// RqDiffAction runs the query twice, once allowing the cache and once live,
// and prints the difference.
func RqDiffAction(ctx context.Context, cmd *cli.Command) error {
	rt, err := NewRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	p, _ := rqPipeline(cmd, rt.Service)

	cached, err := RunQueryCached[query.EventResults](ctx, rt, p, true)
	if err != nil {
		return fmt.Errorf("rq: %w", err)
	}
	live, err := RunQueryCached[query.EventResults](ctx, rt, p, false)
	if err != nil {
		return fmt.Errorf("rq: %w", err)
	}

	out, changed, err := differ.Diff(cached, live, cmd.Bool("color"))
	if err != nil {
		return err
	}
	log.Debugf("changed=%t", changed)

	w := Writer(cmd)
	if !changed {
		fmt.Fprintf(w, "no changes to %s\n", live.Range)
		return nil
	}
	fmt.Fprint(w, out)
	return nil
}

// RqCommandBuilder constructs the cli.Command for "rq", wiring metadata,
// flags, and action/validator handlers.
func RqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "rq",
		Usage:     "event results query",
		UsageText: "sheetctl rq --event NAME --year YEAR [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "event",
				Aliases: []string{"e"},
				Usage:   "event name, matched case-insensitively",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			&cli.StringFlag{
				Name:    "year",
				Aliases: []string{"y"},
				Usage:   "year group",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("SHEETCTL_YEAR"),
					yaml.YAML("rq.year", altsrc.StringSourcer(meta.Config.Source)),
				),
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			&cli.BoolFlag{
				Name:  "diff",
				Usage: "show what changed between the cached and live results",
			},
		},
		Examples: rqExamples,
		Action:   RqCommandAction,
		Meta:     meta,
	}).Build()
}
