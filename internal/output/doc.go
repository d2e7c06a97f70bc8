// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package output filters, sorts and renders query results as text tables,
// JSON or YAML.
package output
