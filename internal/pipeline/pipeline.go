// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/staranto/sheetctl/internal/fetch"
	"github.com/staranto/sheetctl/internal/sheets"
)

var (
	// ErrEmptyPipeline is returned when running a pipeline with no steps.
	ErrEmptyPipeline = errors.New("pipeline has no steps")
	// ErrOutputIndex is returned by Get for an index outside the outputs.
	ErrOutputIndex = errors.New("output index out of range")
	// ErrOutputType is returned by Get when an output is not of the wanted
	// type.
	ErrOutputType = errors.New("unexpected output type")
)

// Kind tags what a step handed back.
type Kind int

const (
	KindValue Kind = iota
	KindFetch
	KindPipeline
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindFetch:
		return "fetch"
	case KindPipeline:
		return "pipeline"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Result is what a step returns: a plain value, a fetch to resolve, or a
// pipeline to run.
type Result struct {
	Kind     Kind
	value    any
	resolver fetch.Resolver
	nested   *Pipeline
}

// Value wraps a plain value.
func Value(v any) Result {
	return Result{Kind: KindValue, value: v}
}

// Fetch wraps a fetch that the runner resolves.
func Fetch(r fetch.Resolver) Result {
	return Result{Kind: KindFetch, resolver: r}
}

// Nested wraps a pipeline that the runner runs in place.
func Nested(p *Pipeline) Result {
	return Result{Kind: KindPipeline, nested: p}
}

// Outputs holds the resolved output of every step run so far, in order.
type Outputs []any

// Len returns the number of outputs.
func (o Outputs) Len() int {
	return len(o)
}

// At returns output i, or nil when i is out of range.
func (o Outputs) At(i int) any {
	if i < 0 || i >= len(o) {
		return nil
	}
	return o[i]
}

// Last returns the most recent output, or nil when there is none.
func (o Outputs) Last() any {
	return o.At(len(o) - 1)
}

// Get returns output i as a T.
func Get[T any](o Outputs, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(o) {
		return zero, fmt.Errorf("%w: %d of %d", ErrOutputIndex, i, len(o))
	}
	v, ok := o[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: output %d is %T, want %T", ErrOutputType, i, o[i], zero)
	}
	return v, nil
}

// Step computes one output from the outputs of all earlier steps.
type Step func(ctx context.Context, prior Outputs) (Result, error)

// Pipeline is an immutable sequence of steps. Add and PreferCache return new
// pipelines, so a partial pipeline can be extended more than once.
type Pipeline struct {
	creds             sheets.Credentials
	steps             []Step
	alwaysPreferCache bool
}

// New returns an empty pipeline bound to creds.
func New(creds sheets.Credentials) *Pipeline {
	return &Pipeline{creds: creds}
}

// Add returns a copy of p with step appended.
func (p *Pipeline) Add(step Step) *Pipeline {
	n := len(p.steps)
	// Capacity is capped at the length so the append always copies.
	steps := append(p.steps[:n:n], step)
	return &Pipeline{
		creds:             p.creds,
		steps:             steps,
		alwaysPreferCache: p.alwaysPreferCache,
	}
}

// PreferCache returns a copy of p whose fetches use the cache even when the
// run that embeds it asked for fresh data.
func (p *Pipeline) PreferCache() *Pipeline {
	return &Pipeline{
		creds:             p.creds,
		steps:             p.steps,
		alwaysPreferCache: true,
	}
}

// AlwaysPreferCache reports whether p was marked with PreferCache.
func (p *Pipeline) AlwaysPreferCache() bool {
	return p.alwaysPreferCache
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Credentials returns the credentials the pipeline was built with.
func (p *Pipeline) Credentials() sheets.Credentials {
	return p.creds
}

// Run executes the steps in order and returns the output of the last one.
// Fetches are cache-preferring when allowCache is true and live otherwise.
// Nested pipelines run with allowCache or their own preference. The first
// failing step aborts the run.
func (p *Pipeline) Run(ctx context.Context, allowCache bool) (any, error) {
	if len(p.steps) == 0 {
		return nil, ErrEmptyPipeline
	}

	outputs := make(Outputs, 0, len(p.steps))
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		res, err := step(ctx, outputs[:i:i])
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		v, err := p.resolve(ctx, i, res, allowCache)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		outputs = append(outputs, v)
	}

	return outputs.Last(), nil
}

func (p *Pipeline) resolve(ctx context.Context, i int, res Result, allowCache bool) (any, error) {
	switch res.Kind {
	case KindValue:
		log.Debugf("step %d: value", i)
		return res.value, nil

	case KindFetch:
		if res.resolver == nil {
			return nil, errors.New("nil fetch")
		}
		v, origin, err := res.resolver.Resolve(ctx, allowCache)
		if err != nil {
			return nil, err
		}
		log.Debugf("step %d: fetch %s (%s)", i, shortKey(res.resolver.Key()), origin)
		return v, nil

	case KindPipeline:
		if res.nested == nil {
			return nil, errors.New("nil pipeline")
		}
		log.Debugf("step %d: pipeline of %d steps", i, res.nested.Len())
		return res.nested.Run(ctx, allowCache || res.nested.AlwaysPreferCache())
	}

	return nil, fmt.Errorf("unknown result kind %s", res.Kind)
}

func shortKey(k string) string {
	if len(k) > 12 {
		return k[:12]
	}
	return k
}

// RunAs runs p and asserts the result to T.
func RunAs[T any](ctx context.Context, p *Pipeline, allowCache bool) (T, error) {
	var zero T
	v, err := p.Run(ctx, allowCache)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: result is %T, want %T", ErrOutputType, v, zero)
	}
	return t, nil
}
