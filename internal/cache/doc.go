// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides the storage adapters behind cacheable fetches. Every
// adapter honors the same contract: exact-key Get/Put, last write wins, and
// safe for concurrent use. The engine never cares which one it is given.
package cache
