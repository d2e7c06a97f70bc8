// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apex/log"
	"golang.org/x/crypto/blake2b"

	"github.com/staranto/sheetctl/internal/sheets"
)

// ErrParserNotSpecified is returned by every resolution call on a Fetch
// that has no parser attached.
var ErrParserNotSpecified = errors.New("parser not specified")

// Origin tells how a resolved value was obtained.
type Origin int

const (
	// OriginCache means the value came from the store.
	OriginCache Origin = iota
	// OriginLive means the store had nothing usable and the backend was asked.
	OriginLive
	// OriginRefresh means the caller bypassed the store on purpose.
	OriginRefresh
)

func (o Origin) String() string {
	switch o {
	case OriginCache:
		return "cache"
	case OriginLive:
		return "live"
	case OriginRefresh:
		return "refresh"
	}
	return fmt.Sprintf("Origin(%d)", int(o))
}

// Resolver is a fetch whose value type has been erased, which is what a
// pipeline step hands back.
type Resolver interface {
	Key() string
	Resolve(ctx context.Context, allowCache bool) (any, Origin, error)
}

// Parser shapes a raw grid into a typed result.
type Parser[T any] func(sheets.Grid) (T, error)

// Fetch is one range request bound to a cache key. It is cheap and meant to
// be built per operation; the cache entry it writes outlives it.
type Fetch[T any] struct {
	client *Client
	req    sheets.Request
	key    string
	parser Parser[T]
}

// New returns a Fetch for req. The key is computed here and never changes.
func New[T any](c *Client, req sheets.Request) *Fetch[T] {
	req = req.Resolved()
	return &Fetch[T]{
		client: c,
		req:    req,
		key:    Key(req),
	}
}

// Key hashes the fully resolved request URL with BLAKE2b-256. Equal
// requests give equal keys; any differing parameter gives a different one.
func Key(req sheets.Request) string {
	sum := blake2b.Sum256([]byte(req.URL()))
	return hex.EncodeToString(sum[:])
}

// SetParser attaches the response-shaping function and returns f.
func (f *Fetch[T]) SetParser(p Parser[T]) *Fetch[T] {
	f.parser = p
	return f
}

// Key returns the cache key.
func (f *Fetch[T]) Key() string {
	return f.key
}

// Live always asks the backend, stores the parsed value under the key and
// returns it as a cache hit would: decoded from the stored bytes, so a live
// and a cached resolution of the same response are equal. A value that does
// not encode and decode cleanly is returned as parsed and not cached. A
// failed fetch or parse writes nothing, so any previous entry survives. A
// failed cache write is only logged.
func (f *Fetch[T]) Live(ctx context.Context) (T, error) {
	var zero T
	if f.parser == nil {
		return zero, ErrParserNotSpecified
	}

	grid, err := f.client.values(ctx, f.key, f.req)
	if err != nil {
		return zero, fmt.Errorf("failed to fetch %s: %w", f.req.Range, err)
	}

	v, err := f.parser(grid)
	if err != nil {
		return zero, fmt.Errorf("failed to parse %s: %w", f.req.Range, err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Warnf("failed to encode %s for cache", f.req.Range)
		return v, nil
	}
	var stored T
	if err := json.Unmarshal(data, &stored); err != nil {
		log.WithError(err).Warnf("failed to decode %s for cache", f.req.Range)
		return v, nil
	}
	if err := f.client.store.Put(ctx, f.key, data); err != nil {
		log.WithError(err).Warnf("failed to write %s to cache", f.req.Range)
	}

	return stored, nil
}

// Lookup probes the store only. A store error or an entry that no longer
// decodes into T counts as a miss.
func (f *Fetch[T]) Lookup(ctx context.Context) (T, bool, error) {
	var zero T
	if f.parser == nil {
		return zero, false, ErrParserNotSpecified
	}

	data, ok, err := f.client.store.Get(ctx, f.key)
	if err != nil {
		log.WithError(err).Warnf("failed to read %s from cache", f.req.Range)
		return zero, false, nil
	}
	if !ok {
		return zero, false, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.WithError(err).Debugf("discarding undecodable cache entry %s", f.key)
		return zero, false, nil
	}
	return v, true, nil
}

// Cached returns the stored value when there is one and falls back to Live
// otherwise.
func (f *Fetch[T]) Cached(ctx context.Context) (T, error) {
	v, _, err := f.resolve(ctx, true)
	return v, err
}

// Resolve is Cached when allowCache is true and Live when it is false. The
// Origin separates a cache miss from a deliberate bypass.
func (f *Fetch[T]) Resolve(ctx context.Context, allowCache bool) (any, Origin, error) {
	v, origin, err := f.resolve(ctx, allowCache)
	if err != nil {
		return nil, origin, err
	}
	return v, origin, nil
}

func (f *Fetch[T]) resolve(ctx context.Context, allowCache bool) (T, Origin, error) {
	logger := log.WithFields(log.Fields{"range": f.req.Range, "key": f.key[:12]})

	if !allowCache {
		v, err := f.Live(ctx)
		if err == nil {
			f.client.refreshes.Add(1)
			logger.Debug("refresh")
		}
		return v, OriginRefresh, err
	}

	v, hit, err := f.Lookup(ctx)
	if err != nil {
		return v, OriginCache, err
	}
	if hit {
		f.client.hits.Add(1)
		logger.Debug("cache hit")
		return v, OriginCache, nil
	}

	v, err = f.Live(ctx)
	if err == nil {
		f.client.misses.Add(1)
		logger.Debug("cache miss")
	}
	return v, OriginLive, err
}

var _ Resolver = (*Fetch[any])(nil)
