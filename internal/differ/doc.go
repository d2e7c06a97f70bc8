// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package differ renders the difference between two JSON documents, such as
// a cached result and its live refetch.
package differ
