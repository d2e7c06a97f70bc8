// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnmatchedName means an identifier matched no known entry.
	ErrUnmatchedName = errors.New("unmatched name")
	// ErrOutOfDomain means a value is outside the allowed set.
	ErrOutOfDomain = errors.New("value outside allowed set")
)

// LookupError carries the failed lookup so callers can show the choices.
// It unwraps to ErrUnmatchedName or ErrOutOfDomain.
type LookupError struct {
	Kind  error
	What  string
	Name  string
	Known []string
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("%s: %s %q", e.Kind, e.What, e.Name)
	if len(e.Known) > 0 {
		msg += " (known: " + strings.Join(e.Known, ", ") + ")"
	}
	return msg
}

func (e *LookupError) Unwrap() error {
	return e.Kind
}
