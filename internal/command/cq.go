// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sheetctl/internal/cache"
	"github.com/staranto/sheetctl/internal/meta"
)

var cqExamples = [][2]string{
	{"sheetctl cq", "list cached ranges for the configured spreadsheet"},
	{"sheetctl cq --purge 24", "drop entries older than a day, then list"},
	{"sheetctl cq -s -bytes", "largest entries first"},
}

// cacheRow is one cached entry as rendered by cq.
type cacheRow struct {
	Key      string `json:"key"`
	Size     string `json:"size"`
	Bytes    int64  `json:"bytes"`
	Age      string `json:"age"`
	Modified string `json:"modified"`
}

// CqCommandAction is the action handler for the "cq" subcommand. It lists,
// and optionally purges, the cache entries for the spreadsheet.
func CqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitExamples(cmd, cqExamples) {
		return nil
	}

	store, err := OpenStore(ctx, cmd.String("spreadsheet"))
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(store); err != nil {
			log.WithError(err).Warn("failed to close cache")
		}
	}()

	mt, ok := store.(cache.Maintainer)
	if !ok {
		return fmt.Errorf("cq: the %T cache cannot be listed", store)
	}

	if hours := int(cmd.Int("purge")); hours > 0 {
		n, err := mt.Purge(ctx, hours)
		if err != nil {
			return err
		}
		log.Infof("purged %d entries older than %dh", n, hours)
	}

	entries, err := mt.Entries(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	rs := make([]cacheRow, 0, len(entries))
	for _, e := range entries {
		rs = append(rs, cacheRow{
			Key:      e.EncodedKey,
			Size:     humanize.Bytes(uint64(e.Size)),
			Bytes:    e.Size,
			Age:      humanize.RelTime(e.ModTime, now, "ago", "from now"),
			Modified: e.ModTime.UTC().Format(time.RFC3339),
		})
	}

	return Emit(rs, BuildAttrs(cmd, "key", "size", "age"), cmd, "")
}

// CqCommandBuilder constructs the cli.Command for "cq", the cache query.
func CqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "cq",
		Usage:     "cache query",
		UsageText: "sheetctl cq [--purge HOURS] [options]",
		Metadata: map[string]any{
			"meta":     meta,
			"examples": cqExamples,
		},
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "purge",
				Usage: "remove entries older than this many hours before listing",
			},
			NewSpreadsheetFlag("cq", meta.Config.Source),
			examplesFlag,
		}, NewGlobalFlags("cq")...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: CqCommandAction,
	}
}
