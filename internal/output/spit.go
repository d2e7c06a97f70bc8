// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/sheetctl/internal/attrs"
	"github.com/staranto/sheetctl/internal/filters"
)

// SliceDiceSpit is the common tail of every query: it filters, transforms,
// sorts and renders a JSON document in the --output format. When parent is
// set only that path of the document is rendered, and a lone object renders
// as a single row.
func SliceDiceSpit(raw bytes.Buffer, al attrs.AttrList, cmd *cli.Command, parent string, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	format := cmd.String("output")
	if format == "raw" {
		_, err := w.Write(raw.Bytes())
		return err
	}

	doc := gjson.Parse(raw.String())
	if parent != "" {
		doc = doc.Get(parent)
	}
	if doc.IsObject() {
		doc = gjson.Parse("[" + doc.Raw + "]")
	}

	dataset := filters.FilterDataset(doc, al, cmd.String("filter"))
	log.Debugf("%d of %d rows after filtering", len(dataset), len(doc.Array()))

	transform(dataset, al)
	SortDataset(dataset, cmd.String("sort"))

	switch format {
	case "json":
		return emit(w, json.Marshal, Project(dataset, al), true)
	case "yaml":
		return emit(w, yaml.Marshal, Project(dataset, al), false)
	}
	TableWriter(dataset, al, useColor(cmd, w), cmd.Bool("titles"), w)
	return nil
}

func transform(dataset []map[string]interface{}, al attrs.AttrList) {
	for _, a := range al {
		if a.TransformSpec == "" {
			continue
		}
		for _, row := range dataset {
			row[a.OutputKey] = a.Transform(row[a.OutputKey])
		}
	}
}

func emit(w io.Writer, marshal func(any) ([]byte, error), v any, newline bool) error {
	out, err := marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if newline {
		out = append(out, '\n')
	}
	_, err = w.Write(out)
	return err
}

// Project reduces each row to the included attributes.
func Project(dataset []map[string]interface{}, al attrs.AttrList) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(dataset))
	for _, row := range dataset {
		p := make(map[string]interface{}, len(al))
		for _, attr := range al {
			if attr.Include {
				p[attr.OutputKey] = row[attr.OutputKey]
			}
		}
		out = append(out, p)
	}
	return out
}

// InterfaceToString converts a cell value to its display form. Blank cells
// and nil render as the optional empty value; zero and false do not.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	empty := ""
	if len(emptyValue) > 0 {
		empty = emptyValue[0]
	}

	switch v := value.(type) {
	case nil:
		return empty
	case string:
		if v == "" {
			return empty
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int, int64, bool:
		return fmt.Sprint(v)
	}

	if b, err := json.Marshal(value); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", value)
}
