// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/staranto/sheetctl/internal/cache"
	"github.com/staranto/sheetctl/internal/sheets"
)

// Transport performs the network half of a fetch.
type Transport interface {
	Values(ctx context.Context, req sheets.Request) (sheets.Grid, error)
}

// Stats counts how fetches made through a Client were served.
type Stats struct {
	Hits      int64
	Misses    int64
	Refreshes int64
	Calls     int64
}

func (s Stats) String() string {
	return fmt.Sprintf("hits=%d misses=%d refreshes=%d calls=%d", s.Hits, s.Misses, s.Refreshes, s.Calls)
}

// Client binds a Transport and a cache Store. Fetches are created against a
// Client and share its storage.
type Client struct {
	transport Transport
	store     cache.Store
	group     *singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	refreshes atomic.Int64
	calls     atomic.Int64
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithCoalescing makes concurrent live fetches of the same key share a
// single transport call. Without it they race and the last cache write wins.
func WithCoalescing() ClientOption {
	return func(c *Client) { c.group = &singleflight.Group{} }
}

// NewClient returns a Client. A nil store behaves like a disabled cache.
func NewClient(t Transport, s cache.Store, opts ...ClientOption) *Client {
	if s == nil {
		s = cache.Null{}
	}
	c := &Client{transport: t, store: s}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the cache the client writes to.
func (c *Client) Store() cache.Store {
	return c.store
}

// Stats returns a snapshot of the counters.
func (c *Client) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Refreshes: c.refreshes.Load(),
		Calls:     c.calls.Load(),
	}
}

func (c *Client) values(ctx context.Context, key string, req sheets.Request) (sheets.Grid, error) {
	if c.group == nil {
		c.calls.Add(1)
		return c.transport.Values(ctx, req)
	}

	// The shared call outlives any one caller; each caller still stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		c.calls.Add(1)
		return c.transport.Values(shared, req)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(sheets.Grid), nil
	}
}
