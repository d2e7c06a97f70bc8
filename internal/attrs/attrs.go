// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
)

// Attr is one output column. It is parsed from a --attrs entry of the form
// key[:outputKey[:transform]], where key is a gjson path into a record.
type Attr struct {
	Key string `yaml:"key"`
	// Include is false for columns kept only for filtering and sorting.
	Include bool `yaml:"include"`
	// OutputKey names the column in json/yaml output and in table titles.
	OutputKey string `yaml:"outputKey"`
	// TransformSpec is a string of transform letters and an optional
	// length: U/l for case, t for local time, r for rounding, N to truncate
	// and -N to elide the middle.
	TransformSpec string `yaml:"transformSpec"`
}

var lengthRe = regexp.MustCompile(`-?\d+`)

// Transform applies a.TransformSpec to a cell value. Strings take every
// transform; numbers only take rounding; other values pass through.
func (a *Attr) Transform(value interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		if f, isNum := value.(float64); isNum && strings.ContainsAny(a.TransformSpec, "rR") {
			return math.Round(f)
		}
		return value
	}

	if strings.ContainsAny(a.TransformSpec, "tT") {
		s = localTime(s)
	}
	s = applyCase(s, a.TransformSpec)
	return applyLength(s, a.TransformSpec)
}

// localTime renders an RFC3339 timestamp in SHEETCTL_TZ, else TZ. Without
// either the value is returned unchanged.
func localTime(s string) string {
	tz := os.Getenv("SHEETCTL_TZ")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return s
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithError(err).Errorf("unknown timezone: %s", tz)
		return s
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		log.Errorf("failed to parse time: %s", s)
		return s
	}
	return t.In(loc).Format("2006-01-02T15:04:05MST")
}

// applyCase honours whichever case letter comes last, so an attr's own spec
// overrides a global one prepended to it.
func applyCase(s, spec string) string {
	lower := strings.LastIndexAny(spec, "lL")
	upper := strings.LastIndexAny(spec, "uU")
	switch {
	case lower > upper:
		return strings.ToLower(s)
	case upper > lower:
		return strings.ToUpper(s)
	}
	return s
}

// applyLength uses the last number in spec. A positive N truncates to N
// bytes; a negative N keeps both ends joined by "..".
func applyLength(s, spec string) string {
	nums := lengthRe.FindAllString(spec, -1)
	if len(nums) == 0 {
		return s
	}
	n, _ := strconv.Atoi(nums[len(nums)-1])
	limit := n
	if limit < 0 {
		limit = -limit
	}
	if len(s) <= limit {
		return s
	}
	if n >= 0 {
		return s[:n]
	}
	keep := limit/2 - 1
	return s[:keep] + ".." + s[len(s)-keep:]
}

type AttrList []Attr

// String renders the list as key:outputKey:transform entries.
func (a *AttrList) String() string {
	parts := make([]string, len(*a))
	for i, attr := range *a {
		parts[i] = fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec)
	}
	return strings.Join(parts, ",")
}

// parseAttr turns one --attrs entry into an Attr. A leading '!' excludes the
// column; "*" is the global transform holder and never shown.
func parseAttr(entry string) Attr {
	fields := strings.Split(entry, ":")

	key := strings.TrimSpace(fields[0])
	attr := Attr{Include: true}
	if rest, excluded := strings.CutPrefix(key, "!"); excluded {
		attr.Include = false
		key = rest
	}
	if key == "*" {
		attr.Include = false
	}
	attr.Key = key

	switch {
	case len(fields) == 1:
		attr.OutputKey = key[strings.LastIndex(key, ".")+1:]
	case strings.TrimSpace(fields[1]) != "":
		attr.OutputKey = strings.TrimSpace(fields[1])
	default:
		attr.OutputKey = key
	}

	if len(fields) > 2 {
		attr.TransformSpec = strings.TrimSpace(fields[2])
	}
	return attr
}

// Set parses a comma separated --attrs value. An entry naming a column that
// is already listed, by key or output key, updates it in place; anything
// else is appended.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	for _, entry := range strings.Split(value, ",") {
		attr := parseAttr(entry)
		if i := a.index(attr.Key); i >= 0 {
			(*a)[i].Include = attr.Include
			(*a)[i].OutputKey = attr.OutputKey
			(*a)[i].TransformSpec = attr.TransformSpec
			continue
		}
		attr.Key = strings.TrimPrefix(attr.Key, ".")
		*a = append(*a, attr)
	}
	return nil
}

func (a *AttrList) index(key string) int {
	for i, attr := range *a {
		if attr.Key == key || attr.OutputKey == key {
			return i
		}
	}
	return -1
}

// SetGlobalTransformSpec prefixes the spec of the first "*" entry onto every
// attr, the "*" entry included.
func (a *AttrList) SetGlobalTransformSpec() error {
	i := a.index("*")
	if i < 0 || (*a)[i].TransformSpec == "" {
		return nil
	}

	global := (*a)[i].TransformSpec
	for j := range *a {
		(*a)[j].TransformSpec = global + "," + (*a)[j].TransformSpec
	}
	return nil
}

func (a *AttrList) Type() string {
	return "list"
}
