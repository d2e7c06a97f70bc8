// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/sheetctl/internal/attrs"
	"github.com/staranto/sheetctl/internal/cache"
	"github.com/staranto/sheetctl/internal/config"
	"github.com/staranto/sheetctl/internal/fetch"
	"github.com/staranto/sheetctl/internal/meta"
	"github.com/staranto/sheetctl/internal/output"
	"github.com/staranto/sheetctl/internal/pipeline"
	"github.com/staranto/sheetctl/internal/query"
	"github.com/staranto/sheetctl/internal/rows"
	"github.com/staranto/sheetctl/internal/sheets"
)

// ErrNoSpreadsheet is returned when no spreadsheet id could be resolved.
var ErrNoSpreadsheet = errors.New("no spreadsheet: set --spreadsheet, SHEETCTL_SPREADSHEET or spreadsheet in config")

// ShortCircuitExamples prints the command's examples when --examples is set
// and returns true so the caller can exit early.
func ShortCircuitExamples(cmd *cli.Command, examples [][2]string) bool {
	if cmd.Bool("examples") {
		output.DumpExamples(Writer(cmd), examples)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// RecordAttrs is BuildAttrs for data whose columns are only known after the
// fetch. --attrs replaces the record fields rather than extending them.
func RecordAttrs(cmd *cli.Command, records []rows.Record, lead ...string) attrs.AttrList {
	if cmd.String("attrs") != "" {
		return BuildAttrs(cmd)
	}

	seen := map[string]bool{}
	var defaults []string
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			defaults = append(defaults, f)
		}
	}
	for _, f := range lead {
		add(f)
	}
	for _, r := range records {
		for _, f := range r.Fields() {
			add(f)
		}
	}
	return BuildAttrs(cmd, defaults...)
}

// Emit marshals v as JSON and passes it to the common output routine.
func Emit(v any, al attrs.AttrList, cmd *cli.Command, parent string) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return output.SliceDiceSpit(*bytes.NewBuffer(b), al, cmd, parent, Writer(cmd))
}

// Writer is where command output goes: the root command's Writer, else
// stdout.
func Writer(cmd *cli.Command) io.Writer {
	if cmd != nil {
		if root := cmd.Root(); root != nil && root.Writer != nil {
			return root.Writer
		}
	}
	return os.Stdout
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// OpenStore builds the cache store described by the "cache" config section,
// partitioned by spreadsheet.
func OpenStore(ctx context.Context, spreadsheet string) (cache.Store, error) {
	var opts cache.Options
	if err := config.Decode("cache", &opts); err != nil {
		return nil, err
	}
	opts.Namespace = spreadsheet
	return cache.Open(ctx, opts)
}

// Runtime is everything a query command needs to run pipelines.
type Runtime struct {
	Service *query.Service
	Client  *fetch.Client
}

// NewRuntime resolves credentials, layout and cache from flags and config.
func NewRuntime(ctx context.Context, cmd *cli.Command) (*Runtime, error) {
	creds := sheets.Credentials{
		Key:         cmd.String("key"),
		Spreadsheet: cmd.String("spreadsheet"),
	}
	if creds.Spreadsheet == "" {
		return nil, ErrNoSpreadsheet
	}
	if creds.Key == "" {
		log.Warn("no API key set, only public spreadsheets will answer")
	}
	log.Debugf("creds: %s", creds)

	var layout query.Layout
	if err := config.Decode("layout", &layout); err != nil {
		return nil, err
	}
	layout = layout.WithDefaults()
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, creds.Spreadsheet)
	if err != nil {
		return nil, err
	}

	timeout, _ := config.GetInt("timeout", 30)
	transport := sheets.NewClient(sheets.WithHTTPClient(&http.Client{
		Timeout: time.Duration(timeout) * time.Second,
	}))
	client := fetch.NewClient(transport, store, fetch.WithCoalescing())

	return &Runtime{
		Service: query.New(client, creds, layout, query.WithEndpoint(cmd.String("endpoint"))),
		Client:  client,
	}, nil
}

// Close releases the cache store.
func (rt *Runtime) Close() {
	if err := cache.Close(rt.Client.Store()); err != nil {
		log.WithError(err).Warn("failed to close cache")
	}
}

// RunQuery runs p, with caching unless --refresh is set, and converts the
// final output to T.
func RunQuery[T any](ctx context.Context, cmd *cli.Command, rt *Runtime, p *pipeline.Pipeline) (T, error) {
	return RunQueryCached[T](ctx, rt, p, !cmd.Bool("refresh"))
}

// RunQueryCached is RunQuery with an explicit cache decision.
func RunQueryCached[T any](ctx context.Context, rt *Runtime, p *pipeline.Pipeline, allowCache bool) (T, error) {
	out, err := pipeline.RunAs[T](ctx, p, allowCache)
	log.Debugf("allowCache=%t %s", allowCache, rt.Client.Stats())
	return out, err
}

// QueryCommandBuilder constructs a cli.Command for query subcommands using a
// consistent pattern. The builder wires metadata, adds the sheet, global and
// examples flags, and sets up validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Examples  [][2]string
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	flags := append([]cli.Flag{}, qcb.Flags...)
	flags = append(flags, examplesFlag)
	flags = append(flags, NewSheetFlags(qcb.Name, qcb.Meta.Config.Source)...)
	flags = append(flags, NewGlobalFlags(qcb.Name)...)

	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta":     qcb.Meta,
			"examples": qcb.Examples,
		},
		Flags: flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common action for queries whose
// result is a list of records: examples short circuit, runtime, pipeline and
// emission.
type QueryActionRunner[T any] struct {
	CommandName string
	Examples    [][2]string
	// Pipeline builds the query. An error aborts before anything is fetched.
	Pipeline func(*cli.Command, *query.Service) (*pipeline.Pipeline, error)
	// Shape turns the pipeline output into rows and the default attrs.
	Shape func(*cli.Command, *query.Service, T) (any, attrs.AttrList)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitExamples(cmd, qar.Examples) {
		return nil
	}

	rt, err := NewRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	p, err := qar.Pipeline(cmd, rt.Service)
	if err != nil {
		return err
	}

	result, err := RunQuery[T](ctx, cmd, rt, p)
	if err != nil {
		return fmt.Errorf("%s: %w", qar.CommandName, err)
	}

	data, al := qar.Shape(cmd, rt.Service, result)
	log.Debugf("attrs: %v", al)
	return Emit(data, al, cmd, "")
}
