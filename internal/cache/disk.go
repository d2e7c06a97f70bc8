// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"path/filepath"

	"github.com/staranto/sheetctl/internal/cacheutil"
)

// Disk keeps one file per key beneath Base/Subdirs.
type Disk struct {
	Base    string
	Subdirs []string
}

// NewDisk returns a Disk store rooted at base. Subdirs partition entries,
// typically by spreadsheet.
func NewDisk(base string, subdirs ...string) *Disk {
	return &Disk{Base: base, Subdirs: subdirs}
}

func (d *Disk) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := cacheutil.Read(d.Base, d.Subdirs, key)
	if !ok {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

func (d *Disk) Put(_ context.Context, key string, value []byte) error {
	return cacheutil.Write(d.Base, d.Subdirs, key, value)
}

// Entries lists what is on disk for this store, newest first.
func (d *Disk) Entries(context.Context) ([]cacheutil.Entry, error) {
	return cacheutil.List(d.Base, d.Subdirs)
}

// Purge removes this store's entries older than hours and reports how many
// went.
func (d *Disk) Purge(ctx context.Context, hours int) (int64, error) {
	before, err := d.Entries(ctx)
	if err != nil {
		return 0, err
	}
	dir := filepath.Join(append([]string{d.Base}, d.Subdirs...)...)
	if err := cacheutil.Purge(dir, hours); err != nil {
		return 0, err
	}
	after, err := d.Entries(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(before) - len(after)), nil
}

var (
	_ Store      = (*Disk)(nil)
	_ Maintainer = (*Disk)(nil)
)
