// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline composes dependent fetch steps into a runnable unit.
//
// Each step sees the outputs of every step before it, not just the previous
// one, and returns a plain value, a fetch, or another pipeline. Run resolves
// them in order and returns the output of the final step.
//
//	p := pipeline.New(creds).
//		Add(func(ctx context.Context, _ pipeline.Outputs) (pipeline.Result, error) {
//			return pipeline.Fetch(events), nil
//		}).
//		Add(func(ctx context.Context, prior pipeline.Outputs) (pipeline.Result, error) {
//			return pipeline.Value(len(prior.Last().([]rows.Record))), nil
//		})
//	n, err := pipeline.RunAs[int](ctx, p, true)
package pipeline
