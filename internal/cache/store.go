// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"io"
	"sync"

	"github.com/staranto/sheetctl/internal/cacheutil"
)

// Store persists serialized values under opaque keys.
type Store interface {
	// Get returns the value stored under key. The bool is false when there is
	// no entry. An error means the backend could not be asked at all.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores value under key, overwriting any previous entry.
	Put(ctx context.Context, key string, value []byte) error
}

// Maintainer is a Store that can be listed and pruned.
type Maintainer interface {
	Entries(ctx context.Context) ([]cacheutil.Entry, error)
	// Purge removes entries older than hours. hours <= 0 is a no-op.
	Purge(ctx context.Context, hours int) (int64, error)
}

// Close releases s if it holds resources.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Memory is a process-local Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte(nil), value...)
	return nil
}

// Len reports how many keys are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Null never holds anything. It is what a disabled cache looks like.
type Null struct{}

func (Null) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Null) Put(context.Context, string, []byte) error         { return nil }

var (
	_ Store = (*Memory)(nil)
	_ Store = Null{}
)
