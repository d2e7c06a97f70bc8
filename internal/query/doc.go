// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package query holds the named queries: events, forms, event results and
// form summaries. Each is a pipeline built over a Layout; running it is up
// to the caller.
package query
