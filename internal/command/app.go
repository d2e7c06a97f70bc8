// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/staranto/sheetctl/internal/config"
	"github.com/staranto/sheetctl/internal/meta"
)

// InitApp builds the root command for args. args[1], the subcommand, is also
// the namespace used when retrieving config values.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	m := meta.Meta{
		Args:        args,
		Config:      config.Config,
		Context:     ctx,
		StartingDir: sd,
	}
	config.SetNamespace(m.Namespace())
	m.Config.Namespace = m.Namespace()

	app := &cli.Command{
		Name:  "sheetctl",
		Usage: "Spreadsheet Control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "sheetctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		CqCommandBuilder(app, m),
		EqCommandBuilder(app, m),
		FqCommandBuilder(app, m),
		RqCommandBuilder(app, m),
		SqCommandBuilder(app, m),
		CompletionCommandBuilder(app, m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
