// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package fetch implements cacheable range fetches. A Fetch knows its cache
// key from the moment it is built and can be resolved either live (always
// ask the backend, then overwrite the entry) or cache-preferring (use the
// entry when there is one).
package fetch
