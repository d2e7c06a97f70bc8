// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strconv"
	"strings"

	"github.com/apex/log"
)

type sortKey struct {
	field         string
	descending    bool
	caseSensitive bool
}

// parseSortSpec splits a --sort spec. Each comma separated field may be
// prefixed with - for descending and ! for case sensitive, in either order.
func parseSortSpec(spec string) []sortKey {
	var keys []sortKey
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		k := sortKey{}
		for len(part) > 0 && (part[0] == '-' || part[0] == '!') {
			if part[0] == '-' {
				k.descending = true
			} else {
				k.caseSensitive = true
			}
			part = part[1:]
		}
		if part == "" {
			continue
		}
		k.field = part
		keys = append(keys, k)
	}
	return keys
}

// SortDataset sorts in place by the fields named in spec. Numbers, and text
// cells that parse as numbers, compare numerically. The sort is stable, so an
// empty spec keeps the sheet order.
func SortDataset(dataset []map[string]interface{}, spec string) {
	keys := parseSortSpec(spec)
	if len(keys) == 0 {
		return
	}
	log.Debugf("sort keys: %+v", keys)

	sort.SliceStable(dataset, func(i, j int) bool {
		for _, k := range keys {
			c := compareValues(dataset[i][k.field], dataset[j][k.field], k.caseSensitive)
			if c == 0 {
				continue
			}
			if k.descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders nil before anything else, numbers before text and
// text lexically.
func compareValues(a, b interface{}, caseSensitive bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	af, aNum := number(a)
	bf, bNum := number(b)
	switch {
	case aNum && bNum:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}

	as, bs := InterfaceToString(a), InterfaceToString(b)
	if !caseSensitive {
		as, bs = strings.ToLower(as), strings.ToLower(bs)
	}
	return strings.Compare(as, bs)
}

func number(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
