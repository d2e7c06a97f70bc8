// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/sheetctl/internal/attrs"
)

// A filter expression is <column><op><target>. op is one of = ~ ^ < > @ /
// and may be negated with a leading '!', e.g. form!^7 or points>10.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is one parsed --filter expression. Key is the output name of a
// column, not its source path.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// String rebuilds the expression.
func (f Filter) String() string {
	op := f.Operand
	if f.Negate {
		op = "!" + op
	}
	return f.Key + op + f.Target
}

func (f Filter) holds(b bool) bool {
	return b != f.Negate
}

// BuildFilters splits spec on SHEETCTL_FILTER_DELIM (default ",") and parses
// each expression. Malformed expressions are logged and dropped.
func BuildFilters(spec string) (filters []Filter) {
	if spec == "" {
		return nil
	}

	delim, ok := os.LookupEnv("SHEETCTL_FILTER_DELIM")
	if !ok {
		delim = ","
	}

	for _, expr := range strings.Split(spec, delim) {
		m := filterRegex.FindStringSubmatch(expr)
		if m == nil {
			log.Errorf("invalid filter: %s", expr)
			continue
		}
		op, negate := strings.CutPrefix(m[2], "!")
		filters = append(filters, Filter{Key: m[1], Negate: negate, Operand: op, Target: m[3]})
	}
	return filters
}

// FilterDataset keeps the rows of candidates that pass every filter in spec
// and projects each onto al. Excluded attrs are carried too so that they can
// still be sorted on; transforms are left to the output stage.
func FilterDataset(candidates gjson.Result, al attrs.AttrList, spec string) []map[string]interface{} {
	filters := BuildFilters(spec)

	var kept []map[string]interface{}
	for _, row := range candidates.Array() {
		if !applyFilters(row, al, filters) {
			continue
		}
		rec := make(map[string]interface{}, len(al))
		for _, a := range al {
			rec[a.OutputKey] = row.Get(a.Key).Value()
		}
		kept = append(kept, rec)
	}
	return kept
}

// sourcePath maps a filter key (an output name) to the gjson path of the
// column it names.
func sourcePath(al attrs.AttrList, outputKey string) (string, bool) {
	for _, a := range al {
		if a.OutputKey == outputKey {
			return a.Key, true
		}
	}
	return "", false
}

// applyFilters reports whether row passes all filters. A filter on a column
// that is not in al is reported and ignored; a null cell fails.
func applyFilters(row gjson.Result, al attrs.AttrList, filters []Filter) bool {
	for _, f := range filters {
		path, ok := sourcePath(al, f.Key)
		if !ok {
			log.Errorf("filter key not found: %s", f.Key)
			fmt.Fprintf(os.Stderr, "warning: filter key not found: %s\n", f.Key)
			continue
		}

		value := row.Get(path).Value()
		if value == nil || !matches(value, f) {
			return false
		}
	}
	return true
}

// matches picks the comparison by the cell's type. Sheet cells are text
// unless rendered unformatted, so numeric-looking text compares as a number
// for < and >.
func matches(value interface{}, f Filter) bool {
	if n, ok := numericText(value, f); ok {
		return checkNumericOperand(n, f)
	}
	switch v := value.(type) {
	case string:
		return checkStringOperand(v, f)
	case bool:
		return checkStringOperand(strconv.FormatBool(v), f)
	}
	if n, ok := toFloat64(value); ok {
		return checkNumericOperand(n, f)
	}
	if f.Operand == "@" {
		return checkContainsOperand(value, f)
	}
	return true
}

// numericText converts a text cell for an ordering filter when both the cell
// and the target parse as numbers.
func numericText(value interface{}, f Filter) (float64, bool) {
	s, ok := value.(string)
	if !ok || (f.Operand != "<" && f.Operand != ">") {
		return 0, false
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}

// checkContainsOperand is '@' on a list (element match) or an object (key
// match).
func checkContainsOperand(value interface{}, f Filter) bool {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if item == f.Target {
				return f.holds(true)
			}
		}
		return f.holds(false)
	case map[string]any:
		_, found := v[f.Target]
		return f.holds(found)
	}
	log.Errorf("unsupported type for contains filtering: %T", value)
	return false
}

// checkNumericOperand supports =, < and >.
func checkNumericOperand(value float64, f Filter) bool {
	target, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		log.Errorf("invalid numeric target: %s", f.Target)
		return false
	}

	switch f.Operand {
	case "=":
		return f.holds(value == target)
	case "<":
		return f.holds(value < target)
	case ">":
		return f.holds(value > target)
	}
	log.Errorf("unsupported numeric operand: %s", f.Operand)
	return false
}

var stringOps = map[string]func(v, target string) (bool, error){
	"=": func(v, t string) (bool, error) { return v == t, nil },
	"~": func(v, t string) (bool, error) { return strings.EqualFold(v, t), nil },
	"^": func(v, t string) (bool, error) { return strings.HasPrefix(v, t), nil },
	"<": func(v, t string) (bool, error) { return v < t, nil },
	">": func(v, t string) (bool, error) { return v > t, nil },
	"@": func(v, t string) (bool, error) { return strings.Contains(v, t), nil },
	"/": func(v, t string) (bool, error) { return regexp.MatchString(t, v) },
}

func checkStringOperand(value string, f Filter) bool {
	op, ok := stringOps[f.Operand]
	if !ok {
		log.Errorf("unsupported filtering operand: %s", f.Operand)
		return false
	}
	b, err := op(value, f.Target)
	if err != nil {
		log.Errorf("invalid regex: %s", f.Target)
		return false
	}
	return f.holds(b)
}

// toFloat64 widens any Go numeric kind.
func toFloat64(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case !rv.IsValid():
		return 0, false
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	}
	return 0, false
}
