// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/sheetctl/internal/fetch"
	"github.com/staranto/sheetctl/internal/pipeline"
	"github.com/staranto/sheetctl/internal/rows"
	"github.com/staranto/sheetctl/internal/sheets"
)

// EventResults is the outcome of an event for one year group.
type EventResults struct {
	Event   rows.Record   `json:"event" yaml:"event"`
	Year    string        `json:"year" yaml:"year"`
	Range   string        `json:"range" yaml:"range"`
	Results []rows.Record `json:"results" yaml:"results"`
}

// FormSummary is a form's entry joined with its summary row.
type FormSummary struct {
	Form    rows.Record `json:"form" yaml:"form"`
	Range   string      `json:"range" yaml:"range"`
	Summary rows.Record `json:"summary" yaml:"summary"`
}

// Service builds the named query pipelines.
type Service struct {
	client   *fetch.Client
	creds    sheets.Credentials
	layout   Layout
	endpoint string
}

// Option customizes a Service.
type Option func(*Service)

// WithEndpoint points requests at a different values endpoint.
func WithEndpoint(endpoint string) Option {
	return func(s *Service) { s.endpoint = endpoint }
}

// New returns a Service. The layout gets its defaults filled in.
func New(c *fetch.Client, creds sheets.Credentials, layout Layout, opts ...Option) *Service {
	s := &Service{
		client: c,
		creds:  creds,
		layout: layout.WithDefaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Layout returns the effective layout.
func (s *Service) Layout() Layout {
	return s.layout
}

func (s *Service) request(rng string) sheets.Request {
	return sheets.Request{
		Endpoint:    s.endpoint,
		Credentials: s.creds,
		Range:       rng,
		Render:      s.layout.Render,
	}
}

func (s *Service) records(rng string) *fetch.Fetch[[]rows.Record] {
	return fetch.New[[]rows.Record](s.client, s.request(rng)).SetParser(rows.Records)
}

// list is a one-step, cache-preferring pipeline over a header-first range.
func (s *Service) list(rng string) *pipeline.Pipeline {
	return pipeline.New(s.creds).
		Add(func(context.Context, pipeline.Outputs) (pipeline.Result, error) {
			return pipeline.Fetch(s.records(rng)), nil
		}).
		PreferCache()
}

// Events lists the events. The list changes rarely so it prefers the cache.
func (s *Service) Events() *pipeline.Pipeline {
	return s.list(s.layout.Events)
}

// Forms lists the forms. The list changes rarely so it prefers the cache.
func (s *Service) Forms() *pipeline.Pipeline {
	return s.list(s.layout.Forms)
}

// target is a matched record and the range derived from it.
type target struct {
	Record rows.Record
	Range  string
}

// EventResults fetches an event's results for a year group. The year is
// checked before anything is fetched.
func (s *Service) EventResults(event, year string) *pipeline.Pipeline {
	year = strings.TrimSpace(year)
	return pipeline.New(s.creds).
		Add(func(context.Context, pipeline.Outputs) (pipeline.Result, error) {
			cells, ok := s.layout.YearGroups[year]
			if !ok {
				return pipeline.Result{}, &LookupError{
					Kind:  ErrOutOfDomain,
					What:  "year",
					Name:  year,
					Known: s.layout.Years(),
				}
			}
			return pipeline.Value(cells), nil
		}).
		Add(func(context.Context, pipeline.Outputs) (pipeline.Result, error) {
			return pipeline.Nested(s.Events()), nil
		}).
		Add(func(_ context.Context, prior pipeline.Outputs) (pipeline.Result, error) {
			cells, err := pipeline.Get[string](prior, 0)
			if err != nil {
				return pipeline.Result{}, err
			}
			events, err := pipeline.Get[[]rows.Record](prior, 1)
			if err != nil {
				return pipeline.Result{}, err
			}

			ev, _, ok := rows.Find(events, s.layout.NameField, event)
			if !ok {
				return pipeline.Result{}, &LookupError{
					Kind:  ErrUnmatchedName,
					What:  "event",
					Name:  event,
					Known: rows.Column(events, s.layout.NameField),
				}
			}

			sheet := ev.String(s.layout.SheetField)
			if sheet == "" {
				return pipeline.Result{}, fmt.Errorf("event %q has no %s", event, s.layout.SheetField)
			}
			rng := A1(sheet, cells)
			log.Debugf("event %s year %s: %s", event, year, rng)
			return pipeline.Value(target{Record: ev, Range: rng}), nil
		}).
		Add(func(_ context.Context, prior pipeline.Outputs) (pipeline.Result, error) {
			t, err := pipeline.Get[target](prior, 2)
			if err != nil {
				return pipeline.Result{}, err
			}
			return pipeline.Fetch(s.records(t.Range)), nil
		}).
		Add(func(_ context.Context, prior pipeline.Outputs) (pipeline.Result, error) {
			t, err := pipeline.Get[target](prior, 2)
			if err != nil {
				return pipeline.Result{}, err
			}
			results, err := pipeline.Get[[]rows.Record](prior, 3)
			if err != nil {
				return pipeline.Result{}, err
			}
			return pipeline.Value(EventResults{
				Event:   t.Record,
				Year:    year,
				Range:   t.Range,
				Results: results,
			}), nil
		})
}

// FormSummary fetches the summary row of a form.
func (s *Service) FormSummary(form string) *pipeline.Pipeline {
	return pipeline.New(s.creds).
		Add(func(context.Context, pipeline.Outputs) (pipeline.Result, error) {
			return pipeline.Nested(s.Forms()), nil
		}).
		Add(func(_ context.Context, prior pipeline.Outputs) (pipeline.Result, error) {
			forms, err := pipeline.Get[[]rows.Record](prior, 0)
			if err != nil {
				return pipeline.Result{}, err
			}

			f, _, ok := rows.Find(forms, s.layout.NameField, form)
			if !ok {
				return pipeline.Result{}, &LookupError{
					Kind:  ErrUnmatchedName,
					What:  "form",
					Name:  form,
					Known: rows.Column(forms, s.layout.NameField),
				}
			}

			rng, err := s.summaryRange(f)
			if err != nil {
				return pipeline.Result{}, err
			}
			log.Debugf("form %s: %s", form, rng)
			return pipeline.Value(target{Record: f, Range: rng}), nil
		}).
		Add(func(_ context.Context, prior pipeline.Outputs) (pipeline.Result, error) {
			t, err := pipeline.Get[target](prior, 1)
			if err != nil {
				return pipeline.Result{}, err
			}
			fields := s.layout.Summary.Fields
			return pipeline.Fetch(fetch.New[rows.Record](s.client, s.request(t.Range)).
				SetParser(func(g sheets.Grid) (rows.Record, error) {
					return rows.Keyed(g, fields)
				})), nil
		}).
		Add(func(_ context.Context, prior pipeline.Outputs) (pipeline.Result, error) {
			t, err := pipeline.Get[target](prior, 1)
			if err != nil {
				return pipeline.Result{}, err
			}
			summary, err := pipeline.Get[rows.Record](prior, 2)
			if err != nil {
				return pipeline.Result{}, err
			}
			return pipeline.Value(FormSummary{Form: t.Record, Range: t.Range, Summary: summary}), nil
		})
}

func (s *Service) summaryRange(form rows.Record) (string, error) {
	raw := form.String(s.layout.RowField)
	row, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || row < 1 {
		return "", fmt.Errorf("form %q has no valid %s: %q", form.String(s.layout.NameField), s.layout.RowField, raw)
	}
	sum := s.layout.Summary
	return A1(sum.Sheet, fmt.Sprintf("%s%d:%s%d", sum.FirstCol, row, sum.LastCol, row)), nil
}
