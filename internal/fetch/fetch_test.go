// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/sheetctl/internal/cache"
	"github.com/staranto/sheetctl/internal/sheets"
)

// fakeTransport returns a grid per range and counts calls.
type fakeTransport struct {
	mu    sync.Mutex
	grids map[string]sheets.Grid
	err   error
	delay time.Duration
	gate  chan struct{}
	calls atomic.Int64
}

func (f *fakeTransport) Values(ctx context.Context, req sheets.Request) (sheets.Grid, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	g, ok := f.grids[req.Range]
	if !ok {
		return nil, errors.New("no such range")
	}
	return g, nil
}

func (f *fakeTransport) set(rng string, g sheets.Grid) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grids[rng] = g
}

var testCreds = sheets.Credentials{Key: "k", Spreadsheet: "s"}

func req(rng string) sheets.Request {
	return sheets.Request{Credentials: testCreds, Range: rng}
}

// firstCell is a parser returning the top-left cell as a string.
func firstCell(g sheets.Grid) (string, error) {
	return g.String(0, 0), nil
}

func TestKey(t *testing.T) {
	base := req("A!A1:B2")
	k := Key(base)

	assert.Len(t, k, 64)
	assert.Equal(t, k, Key(req("A!A1:B2")), "deterministic")

	variants := map[string]sheets.Request{
		"range":       req("A!A1:B3"),
		"key":         {Credentials: sheets.Credentials{Key: "other", Spreadsheet: "s"}, Range: "A!A1:B2"},
		"spreadsheet": {Credentials: sheets.Credentials{Key: "k", Spreadsheet: "other"}, Range: "A!A1:B2"},
		"dimension":   {Credentials: testCreds, Range: "A!A1:B2", Dimension: sheets.Columns},
		"render":      {Credentials: testCreds, Range: "A!A1:B2", Render: sheets.Unformatted},
		"endpoint":    {Credentials: testCreds, Range: "A!A1:B2", Endpoint: "http://localhost:1"},
	}
	for name, r := range variants {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, k, Key(r))
		})
	}

	explicit := sheets.Request{
		Endpoint:    sheets.DefaultEndpoint,
		Credentials: testCreds,
		Range:       "A!A1:B2",
		Dimension:   sheets.Rows,
		Render:      sheets.Formatted,
	}
	assert.Equal(t, k, Key(explicit), "defaults resolve before hashing")
}

func TestFetch_KeyStable(t *testing.T) {
	c := NewClient(&fakeTransport{}, cache.NewMemory())
	f := New[string](c, req("A!A1"))
	k := f.Key()
	f.SetParser(firstCell)
	assert.Equal(t, k, f.Key())
	assert.Equal(t, Key(req("A!A1")), k)
}

func TestFetch_ParserNotSpecified(t *testing.T) {
	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1": {{"x"}}}}
	store := cache.NewMemory()
	c := NewClient(ft, store)

	primed := New[string](c, req("A!A1")).SetParser(firstCell)
	_, err := primed.Live(ctx)
	require.NoError(t, err)
	ft.calls.Store(0)

	f := New[string](c, req("A!A1"))

	_, err = f.Live(ctx)
	assert.ErrorIs(t, err, ErrParserNotSpecified)
	_, err = f.Cached(ctx)
	assert.ErrorIs(t, err, ErrParserNotSpecified, "even with a cached entry present")
	_, _, err = f.Lookup(ctx)
	assert.ErrorIs(t, err, ErrParserNotSpecified)
	_, _, err = f.Resolve(ctx, true)
	assert.ErrorIs(t, err, ErrParserNotSpecified)

	assert.Zero(t, ft.calls.Load())
}

func TestFetch_Cached(t *testing.T) {
	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1": {{"v1"}}}}
	c := NewClient(ft, cache.NewMemory())
	f := New[string](c, req("A!A1")).SetParser(firstCell)

	v, origin, err := f.Resolve(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
	assert.Equal(t, OriginLive, origin)
	assert.EqualValues(t, 1, ft.calls.Load())

	ft.set("A!A1", sheets.Grid{{"v2"}})

	v, origin, err = f.Resolve(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "v1", v, "served from cache")
	assert.Equal(t, OriginCache, origin)
	assert.EqualValues(t, 1, ft.calls.Load())

	v, origin, err = f.Resolve(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	assert.Equal(t, OriginRefresh, origin)
	assert.EqualValues(t, 2, ft.calls.Load())

	s, err := f.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", s, "refresh overwrote the entry")

	assert.Equal(t, Stats{Hits: 2, Misses: 1, Refreshes: 1, Calls: 2}, c.Stats())
}

func TestFetch_LiveFailureKeepsEntry(t *testing.T) {
	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1": {{"old"}}}}
	c := NewClient(ft, cache.NewMemory())
	f := New[string](c, req("A!A1")).SetParser(firstCell)

	_, err := f.Live(ctx)
	require.NoError(t, err)

	ft.err = errors.New("boom")
	_, err = f.Live(ctx)
	assert.ErrorContains(t, err, "boom")

	v, hit, err := f.Lookup(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "old", v)
}

func TestFetch_ParseFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1": {{"x"}}}}
	store := cache.NewMemory()
	c := NewClient(ft, store)

	bad := errors.New("bad shape")
	f := New[string](c, req("A!A1")).SetParser(func(sheets.Grid) (string, error) { return "", bad })

	_, err := f.Live(ctx)
	assert.ErrorIs(t, err, bad)
	assert.Zero(t, store.Len())
}

func TestFetch_UndecodableEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1": {{"fresh"}}}}
	store := cache.NewMemory()
	c := NewClient(ft, store)
	f := New[string](c, req("A!A1")).SetParser(firstCell)

	require.NoError(t, store.Put(ctx, f.Key(), []byte(`{"not":"a string"}`)))

	v, origin, err := f.Resolve(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
	assert.Equal(t, OriginLive, origin)
}

// failingStore errors on every call.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("store down")
}

func TestFetch_StoreFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1": {{"x"}}}}
	c := NewClient(ft, failingStore{})
	f := New[string](c, req("A!A1")).SetParser(firstCell)

	v, err := f.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestFetch_NilStore(t *testing.T) {
	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1": {{"x"}}}}
	c := NewClient(ft, nil)
	f := New[string](c, req("A!A1")).SetParser(firstCell)

	for i := 0; i < 2; i++ {
		_, origin, err := f.Resolve(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, OriginLive, origin)
	}
	assert.EqualValues(t, 2, ft.calls.Load())
}

func TestFetch_SharedKeyAcrossInstances(t *testing.T) {
	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1": {{"x"}}}}
	c := NewClient(ft, cache.NewMemory())

	_, err := New[string](c, req("A!A1")).SetParser(firstCell).Live(ctx)
	require.NoError(t, err)

	v, err := New[string](c, req("A!A1")).SetParser(firstCell).Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", v)
	assert.EqualValues(t, 1, ft.calls.Load())
}

func TestFetch_StructRoundTrip(t *testing.T) {
	type row struct {
		Name   string  `json:"name"`
		Points float64 `json:"points"`
	}
	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1:B2": {{"100m", 10.0}, {"Long Jump", 8.0}}}}
	c := NewClient(ft, cache.NewMemory())

	parse := func(g sheets.Grid) ([]row, error) {
		out := make([]row, 0, g.Rows())
		for i := 0; i < g.Rows(); i++ {
			p, _ := g.At(i, 1).(float64)
			out = append(out, row{Name: g.String(i, 0), Points: p})
		}
		return out, nil
	}

	live, err := New[[]row](c, req("A!A1:B2")).SetParser(parse).Live(ctx)
	require.NoError(t, err)
	cached, err := New[[]row](c, req("A!A1:B2")).SetParser(parse).Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, live, cached)
}

func TestClient_Coalescing(t *testing.T) {
	ctx := context.Background()
	ft := &fakeTransport{
		grids: map[string]sheets.Grid{"A!A1": {{"x"}}},
		delay: 50 * time.Millisecond,
	}
	c := NewClient(ft, cache.NewMemory(), WithCoalescing())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := New[string](c, req("A!A1")).SetParser(firstCell).Live(ctx)
			assert.NoError(t, err)
			assert.Equal(t, "x", v)
		}()
	}
	wg.Wait()

	assert.Less(t, ft.calls.Load(), int64(5))
}

func TestFetch_LiveMatchesCached(t *testing.T) {
	type hidden struct{ n int }

	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1": {{"x"}}, "B!B1": {{"y"}}}}
	c := NewClient(ft, cache.NewMemory())

	count := New[any](c, req("A!A1")).SetParser(func(sheets.Grid) (any, error) { return 1, nil })
	live, err := count.Live(ctx)
	require.NoError(t, err)
	cached, err := count.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(1), live)
	assert.Equal(t, live, cached)

	opaque := New[hidden](c, req("B!B1")).SetParser(func(sheets.Grid) (hidden, error) { return hidden{n: 2}, nil })
	first, err := opaque.Cached(ctx)
	require.NoError(t, err)
	second, err := opaque.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.EqualValues(t, 2, ft.calls.Load())
}

func TestFetch_UnencodableValueNotCached(t *testing.T) {
	ctx := context.Background()
	ft := &fakeTransport{grids: map[string]sheets.Grid{"A!A1": {{"x"}}}}
	store := cache.NewMemory()
	c := NewClient(ft, store)

	f := New[any](c, req("A!A1")).SetParser(func(sheets.Grid) (any, error) { return make(chan int), nil })
	v, err := f.Live(ctx)
	require.NoError(t, err)
	assert.IsType(t, make(chan int), v)
	assert.Zero(t, store.Len())
}

func TestClient_Store(t *testing.T) {
	store := cache.NewMemory()
	assert.Same(t, store, NewClient(&fakeTransport{}, store).Store())
	assert.IsType(t, cache.Null{}, NewClient(&fakeTransport{}, nil).Store())
}

func TestClient_CoalescingSurvivesCancelledCaller(t *testing.T) {
	ft := &fakeTransport{
		grids: map[string]sheets.Grid{"A!A1": {{"x"}}},
		gate:  make(chan struct{}),
	}
	c := NewClient(ft, cache.NewMemory(), WithCoalescing())

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := New[string](c, req("A!A1")).SetParser(firstCell).Live(first)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return ft.calls.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan string, 1)
	go func() {
		v, err := New[string](c, req("A!A1")).SetParser(firstCell).Live(context.Background())
		assert.NoError(t, err)
		second <- v
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	// Let the second caller join the in-flight call before it completes.
	time.Sleep(20 * time.Millisecond)
	close(ft.gate)
	assert.Equal(t, "x", <-second)
	assert.EqualValues(t, 1, ft.calls.Load(), "one shared transport call")
}

func TestOrigin_String(t *testing.T) {
	assert.Equal(t, "cache", OriginCache.String())
	assert.Equal(t, "live", OriginLive.String())
	assert.Equal(t, "refresh", OriginRefresh.String())
	assert.Equal(t, "Origin(9)", Origin(9).String())
}
