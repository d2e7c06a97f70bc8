// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Diff compares the JSON forms of before and after. It returns the ascii
// rendering of the delta and whether anything changed. Both values must encode
// as JSON objects.
func Diff(before, after any, color bool) (string, bool, error) {
	left, err := toObject(before)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode left side: %w", err)
	}
	right, err := toObject(after)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode right side: %w", err)
	}

	d := gojsondiff.New().CompareObjects(left, right)
	if !d.Modified() {
		log.Debug("no differences")
		return "", false, nil
	}
	log.Debugf("%d top level deltas", len(d.Deltas()))

	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	out, err := f.Format(d)
	if err != nil {
		return "", true, fmt.Errorf("failed to format diff: %w", err)
	}
	return out, true, nil
}

func toObject(v any) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
